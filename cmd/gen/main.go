package main

import (
	"FlockCheck/internal/repository"
	"FlockCheck/pkg/logger"
)

func main() {
	logger.Init()
	defer logger.Sync()

	repository.RunGenerate()
}
