package aws

import (
	"bytes"
	"canvas-editor/core"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

const (
	documentsPrefix = "documents/"
	projectsPrefix  = "projects/"
	pageExt         = ".json"
)

// s3API is the subset of the S3 client the store uses.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type s3Store struct {
	s3Client s3API
	bucket   string
}

// NewStore creates a new S3-based store.
func NewStore(bucketName string) *s3Store {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		logrus.WithError(err).Fatal("unable to load SDK config")
	}

	return newStore(s3.NewFromConfig(cfg), bucketName)
}

func newStore(client s3API, bucketName string) *s3Store {
	return &s3Store{
		s3Client: client,
		bucket:   bucketName,
	}
}

func isNoSuchKey(err error) bool {
	var nsk *s3types.NoSuchKey
	return errors.As(err, &nsk)
}

// DocumentStore implementation for anonymous sharing
func (s *s3Store) FindID(ctx context.Context, id string) (*core.SharedDocument, error) {
	log := logrus.WithField("document_id", id)
	if err := validKey(id); err != nil {
		return nil, fmt.Errorf("document with id %s: %w", id, core.ErrNotFound)
	}
	data, err := s.read(ctx, documentsPrefix+id)
	if err != nil {
		if isNoSuchKey(err) {
			log.WithField("error", "document not found").Warn("Document with specified ID not found")
			return nil, fmt.Errorf("document with id %s: %w", id, core.ErrNotFound)
		}
		log.WithError(err).Error("Failed to retrieve document")
		return nil, fmt.Errorf("failed to get document with id %s: %w", id, err)
	}

	log.Info("Document retrieved successfully")
	return &core.SharedDocument{Data: *bytes.NewBuffer(data)}, nil
}

func (s *s3Store) Create(ctx context.Context, document *core.SharedDocument) (string, error) {
	id := ulid.Make().String()

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(documentsPrefix + id),
		Body:   bytes.NewReader(document.Data.Bytes()),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload document: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"document_id": id,
		"data_length": document.Data.Len(),
	}).Info("Document created successfully")
	return id, nil
}

func (s *s3Store) read(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// validKey rejects ids that are paths rather than simple names.
func validKey(id string) error {
	if id == "" || id == "." || id == ".." || path.Base(id) != id || strings.Contains(id, "/") {
		return fmt.Errorf("%w: invalid id %q", core.ErrInvalidArgument, id)
	}
	return nil
}

// PageStore implementation
func (s *s3Store) pageKey(projectID, id string) (string, error) {
	if err := validKey(projectID); err != nil {
		return "", err
	}
	if err := validKey(id); err != nil {
		return "", err
	}
	return projectsPrefix + path.Join(projectID, id+pageExt), nil
}

func (s *s3Store) List(ctx context.Context, projectID string) ([]*core.Page, error) {
	if err := validKey(projectID); err != nil {
		return nil, err
	}
	log := logrus.WithField("project_id", projectID)

	pages := []*core.Page{}
	paginator := s3.NewListObjectsV2Paginator(s.s3Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(projectsPrefix + projectID + "/"),
	})
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list pages for project %s: %w", projectID, err)
		}
		for _, object := range output.Contents {
			key := aws.ToString(object.Key)
			if !strings.HasSuffix(key, pageExt) {
				continue
			}
			data, err := s.read(ctx, key)
			if err != nil {
				log.WithError(err).Warnf("Failed to get object %s, skipping", key)
				continue
			}
			var page core.Page
			if err := json.Unmarshal(data, &page); err != nil {
				log.WithError(err).Warnf("Failed to unmarshal page %s, skipping", key)
				continue
			}
			pages = append(pages, &page)
		}
	}
	core.SortPages(pages)

	log.Debugf("Listed %d pages", len(pages))
	return pages, nil
}

func (s *s3Store) Get(ctx context.Context, projectID, id string) (*core.Page, error) {
	key, err := s.pageKey(projectID, id)
	if err != nil {
		return nil, err
	}
	data, err := s.read(ctx, key)
	if err != nil {
		if isNoSuchKey(err) {
			logrus.WithFields(logrus.Fields{"project_id": projectID, "page_id": id}).Warn("Page not found")
			return nil, fmt.Errorf("page %s: %w", id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get page %s: %w", id, err)
	}

	var page core.Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to unmarshal page data: %w", err)
	}
	return &page, nil
}

func (s *s3Store) Save(ctx context.Context, page *core.Page) error {
	key, err := s.pageKey(page.ProjectID, page.ID)
	if err != nil {
		return err
	}

	// Preserve CreatedAt on update
	if page.CreatedAt.IsZero() {
		existing, err := s.Get(ctx, page.ProjectID, page.ID)
		if err == nil && existing != nil {
			page.CreatedAt = existing.CreatedAt
		} else {
			page.CreatedAt = time.Now()
		}
	}
	page.UpdatedAt = time.Now()

	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to marshal page: %w", err)
	}

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to save page %s: %w", page.ID, err)
	}

	logrus.WithFields(logrus.Fields{
		"project_id":  page.ProjectID,
		"page_id":     page.ID,
		"data_length": len(page.Data),
	}).Info("Page saved successfully")
	return nil
}

func (s *s3Store) Delete(ctx context.Context, projectID, id string) error {
	key, err := s.pageKey(projectID, id)
	if err != nil {
		return err
	}
	if _, err := s.read(ctx, key); err != nil {
		if isNoSuchKey(err) {
			return fmt.Errorf("page %s: %w", id, core.ErrNotFound)
		}
		return fmt.Errorf("failed to delete page %s: %w", id, err)
	}
	_, err = s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete page %s: %w", id, err)
	}

	logrus.WithFields(logrus.Fields{"project_id": projectID, "page_id": id}).Info("Page deleted successfully")
	return nil
}
