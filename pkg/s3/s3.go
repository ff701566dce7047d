package s3

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	awsS3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// ItfS3 exports completed-session reports (final statistics plus landmark
// history) for downstream analytics. Uploads are best-effort from the
// caller's point of view.
type ItfS3 interface {
	UploadSessionReport(sessionID string, payload []byte) (string, error)
	PresignReportUrl(key string) (string, error)
	DeleteReport(key string) error
}

type s3Client struct {
	client     *awsS3.S3
	session    *session.Session
	bucketName string
}

func New() (ItfS3, error) {
	sess, err := newSession()
	if err != nil {
		return nil, err
	}

	return &s3Client{
		client:     awsS3.New(sess),
		session:    sess,
		bucketName: os.Getenv("AWS_BUCKET_NAME"),
	}, nil
}

func (s *s3Client) UploadSessionReport(sessionID string, payload []byte) (string, error) {
	uploader := s3manager.NewUploader(s.session)

	key := ReportKey(sessionID)
	uploadOutput, err := uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", err
	}

	return uploadOutput.Location, nil
}

func (s *s3Client) PresignReportUrl(key string) (string, error) {
	_, err := s.client.HeadObject(&awsS3.HeadObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("report does not exist: %w", err)
	}

	req, _ := s.client.GetObjectRequest(&awsS3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})

	urlStr, err := req.Presign(15 * time.Minute)
	if err != nil {
		return "", err
	}

	return urlStr, nil
}

func (s *s3Client) DeleteReport(key string) error {
	_, err := s.client.DeleteObject(&awsS3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	return err
}

// ReportKey is the bucket key of a session's report. Keys carry only the
// session id so a later delete can rebuild them without knowing when the
// report was uploaded.
func ReportKey(sessionID string) string {
	return fmt.Sprintf("harmony/reports/%s.json", sessionID)
}

func newSession() (*session.Session, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(os.Getenv("AWS_REGION")),
		Credentials: credentials.NewStaticCredentials(
			os.Getenv("AWS_ACCESS_KEY_ID"),
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			"",
		),
	})
	if err != nil {
		return nil, err
	}

	return sess, nil
}
