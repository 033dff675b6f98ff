package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	bolt "go.etcd.io/bbolt"

	"go-pos-terminal/internal/model"
)

var (
	ErrNoRecord      = errors.New("no persisted session")
	ErrInvalidRecord = errors.New("persisted session is invalid")
)

const (
	bucketName = "terminal"
	recordKey  = "session" // fixed storage key, one record per terminal
)

// Claims wraps the persisted user record. The record is signed with a
// device-local secret so an edited session file fails restore instead of
// impersonating another user.
type Claims struct {
	User model.User `json:"user"`
	jwt.RegisteredClaims
}

// Storage persists the single session record across terminal restarts.
type Storage struct {
	db     *bolt.DB
	secret []byte
}

func Open(path string, secret []byte) (*Storage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Storage{db: db, secret: secret}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// Save writes the user as the terminal's session record, replacing any
// previous one.
func (s *Storage) Save(user *model.User) error {
	claims := &Claims{
		User: *user,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Issuer:   "go-pos-terminal",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(recordKey), []byte(signed))
	})
}

// Load reads and verifies the persisted session record.
func (s *Storage) Load() (*model.User, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketName)).Get([]byte(recordKey))
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ErrNoRecord
	}

	token, err := jwt.ParseWithClaims(string(raw), &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidRecord
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidRecord
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidRecord
	}
	return &claims.User, nil
}

// Clear removes the persisted record. Clearing an already empty store is
// not an error.
func (s *Storage) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(recordKey))
	})
}
