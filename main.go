package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/docchat-io/docchat-be/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}
}
