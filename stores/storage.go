package stores

import (
	"canvas-editor/config"
	"canvas-editor/core"
	"canvas-editor/stores/aws"
	"canvas-editor/stores/filesystem"
	"canvas-editor/stores/memory"
	"canvas-editor/stores/sqlite"

	"github.com/sirupsen/logrus"
)

// Store is a union interface that includes all store types.
type Store interface {
	core.DocumentStore
	core.PageStore
}

func GetStore(cfg config.Storage) Store {
	var store Store

	storageField := logrus.Fields{
		"storageType": cfg.Type,
	}

	switch cfg.Type {
	case "filesystem":
		basePath := cfg.LocalPath
		if basePath == "" {
			basePath = "./data" // Default path
		}
		storageField["basePath"] = basePath
		store = filesystem.NewStore(basePath)
	case "sqlite":
		dataSourceName := cfg.DataSourceName
		if dataSourceName == "" {
			dataSourceName = "canvas.db" // Default filename
		}
		storageField["dataSourceName"] = dataSourceName
		store = sqlite.NewStore(dataSourceName)
	case "s3":
		if cfg.BucketName == "" {
			logrus.Fatal("S3_BUCKET_NAME must be set for s3 storage type")
		}
		storageField["bucketName"] = cfg.BucketName
		store = aws.NewStore(cfg.BucketName)
	default:
		store = memory.NewStore()
		storageField["storageType"] = "in-memory"
	}
	logrus.WithFields(storageField).Info("Use storage")
	return store
}
