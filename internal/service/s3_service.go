package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"path"
	"time"

	"filetree-server/config"
	"filetree-server/internal/model"
	"filetree-server/internal/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Service struct {
	client   *s3.Client
	bucket   string
	psClient *s3.PresignClient
}

func NewS3Service(ctx context.Context, cfg *config.S3Config) (*S3Service, error) {
	var client *s3.Client

	if cfg.Local {
		client = s3.New(s3.Options{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				"minioadmin",
				"minioadmin",
				"",
			),
			BaseEndpoint: aws.String(cfg.Endpoint),
			UsePathStyle: true,
		})

		if err := createBucketIfNotExists(ctx, client, cfg.Bucket); err != nil {
			return nil, util.LogError("[S3Service] ошибка создания бакета", err)
		}
	} else {
		awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, util.LogError("[S3Service] ошибка загрузки AWS config", err)
		}
		client = s3.NewFromConfig(awsCfg)
	}

	psClient := s3.NewPresignClient(client)

	return &S3Service{
		client:   client,
		psClient: psClient,
		bucket:   cfg.Bucket,
	}, nil
}

// createBucketIfNotExists создает бакет если он не существует
func createBucketIfNotExists(ctx context.Context, client *s3.Client, bucket string) error {
	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})

	if err == nil {
		return nil // Бакет уже существует
	}

	_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	})

	if err != nil {
		return util.LogError("[S3Service] ошибка создания бакета", err)
	}

	log.Printf("[S3Service] бакет %s успешно создан", bucket)
	return nil
}

// GeneratePresignedGetURL : генерация pre-signed URL для GET
func (s *S3Service) GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	req, err := s.psClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expire
	})
	if err != nil {
		return "", util.LogError("[S3Service] не удалось сгенерировать presigned GET URL", errors.Join(util.ErrStorage, err))
	}

	return req.URL, nil
}

// GeneratePresignedPutURL : генерация pre-signed URL для PUT
func (s *S3Service) GeneratePresignedPutURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	req, err := s.psClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expire
	})
	if err != nil {
		return "", util.LogError("[S3Service] не удалось сгенерировать presigned PUT URL", errors.Join(util.ErrStorage, err))
	}
	return req.URL, nil
}

// Archive : собирает zip из дерева узлов, содержимое файлов берётся из S3.
// Структура каталогов в архиве повторяет структуру папок.
func (s *S3Service) Archive(ctx context.Context, nodes []*model.TreeNode) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, node := range nodes {
		if err := s.archiveNode(ctx, zw, node, ""); err != nil {
			zw.Close()
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, util.LogError("[S3Service] ошибка закрытия архива", err)
	}
	return buf.Bytes(), nil
}

func (s *S3Service) archiveNode(ctx context.Context, zw *zip.Writer, node *model.TreeNode, prefix string) error {
	entryName := path.Join(prefix, node.Node.Name)

	if node.Node.IsFolder() {
		// пустая запись-каталог, чтобы пустые папки тоже попадали в архив
		if _, err := zw.Create(entryName + "/"); err != nil {
			return util.LogError("[S3Service] ошибка записи каталога в архив", err)
		}
		for _, child := range node.Children {
			if err := s.archiveNode(ctx, zw, child, entryName); err != nil {
				return err
			}
		}
		return nil
	}

	obj, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(node.Node.StorageKey()),
	})
	if err != nil {
		return util.LogError("[S3Service] не удалось получить объект для архива", errors.Join(util.ErrStorage, err))
	}
	defer obj.Body.Close()

	w, err := zw.Create(entryName)
	if err != nil {
		return util.LogError("[S3Service] ошибка записи файла в архив", err)
	}
	if _, err := io.Copy(w, obj.Body); err != nil {
		return util.LogError("[S3Service] ошибка копирования содержимого в архив", err)
	}

	return nil
}
