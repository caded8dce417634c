package file_store

import (
	"io"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
	"github.com/photolog-app/photolog/utils"
	"github.com/pkg/errors"
)

const (
	DevS3PhotoBucket  = "photolog-dev-bucket"
	ProdS3PhotoBucket = "photolog-photo-output"
)

type S3FileStore struct {
	bucket                   string
	urlPrefix                string
	uploader                 *s3manager.Uploader
	svc                      *s3.S3
	customizeFileNameFunc    CustomizeFileNameFuncType
	customizeUploadedUrlFunc CustomizeUploadedUrlType
}

func NewS3FileStore(bucket string) (*S3FileStore, error) {
	// AWS client session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String("ap-northeast-2"),
	})
	if err != nil {
		return nil, err
	}

	uploader := s3manager.NewUploader(sess)

	return &S3FileStore{
		bucket:                   bucket,
		urlPrefix:                os.Getenv("S3_PUBLIC_URL_PREFIX"),
		uploader:                 uploader,
		svc:                      s3.New(session.Must(sess, err)),
		customizeFileNameFunc:    nil,
		customizeUploadedUrlFunc: nil,
	}, nil
}

func (s *S3FileStore) SetCustomizeFileNameFunc(f CustomizeFileNameFuncType) {
	s.customizeFileNameFunc = f
}

func (s *S3FileStore) SetCustomizeUploadedUrlFunc(f CustomizeUploadedUrlType) {
	s.customizeUploadedUrlFunc = f
}

// S3 key is a random name plus the original extension. Uploads of the same
// file by two members must not share a key, deleting one photo must never
// break the other.
func (s *S3FileStore) GenerateS3Key(fileName string) (key string, err error) {
	if s.customizeFileNameFunc != nil {
		key = s.customizeFileNameFunc(fileName)
	} else {
		key, err = utils.TextToMd5Hash(uuid.New().String() + fileName)
	}

	if len(key) == 0 {
		err = errors.New("generate empty s3 key, invalid")
	}

	return key + utils.GetUrlExtNameWithDot(fileName), err
}

func (s *S3FileStore) Store(fileName string, body io.Reader) (key string, err error) {
	key, err = s.GenerateS3Key(fileName)
	if err != nil {
		return "", err
	}

	_, err = s.uploader.Upload(&s3manager.UploadInput{
		ACL:    aws.String("public-read"),
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return "", errors.Wrap(err, "fail to upload to s3")
	}
	return key, nil
}

func (s *S3FileStore) Delete(key string) error {
	_, err := s.svc.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3FileStore) GetUrlFromKey(key string) string {
	if s.customizeUploadedUrlFunc == nil {
		return s.urlPrefix + key
	}
	return s.customizeUploadedUrlFunc(key)
}

func (s *S3FileStore) CleanUp() {
	// do nothing for s3
}
