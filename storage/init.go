package storage

import (
	"FlockCheck/storage/database"
	"FlockCheck/storage/mq"
	"FlockCheck/storage/redis"
)

// Init brings up all storage backends.
func Init() error {
	if err := database.Init(); err != nil {
		return err
	}

	if err := redis.Init(); err != nil {
		return err
	}

	if err := mq.Init(); err != nil {
		return err
	}

	return nil
}
