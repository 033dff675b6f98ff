package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"go-pos-terminal/internal/mockapi"
	"go-pos-terminal/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	logger.Init(logger.Config{Mode: os.Getenv("POS_LOG_MODE")})

	server := mockapi.New()

	go func() {
		port := os.Getenv("MOCKAPI_PORT")
		if port == "" {
			port = "8081"
		}
		log.Println("Mock backend listening on :" + port)
		if err := server.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down mock backend...")
	if err := server.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
}
