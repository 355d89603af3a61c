// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface so the set-index
// snapshot and the object feed source can be tested against the testify mock
// in core/storage/mocks. Both AWS S3 and self-hosted MinIO work.
//
// # Helpers
//
//   - EnsureBucket: creates the configured bucket on first use.
//   - PutJSON / GetJSON: store and load JSON documents.
//   - IsNotFound: recognizes missing keys, including the lazy error minio
//     returns on the first read of a GetObject stream.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
//	err = storage.GetJSON(ctx, client, cfg.Storage.Bucket, "setindex/snapshot.json", &snap)
package storage
