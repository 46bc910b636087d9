package s3

import (
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

func NewClient(bucket, region, prefix string) Lister {
	awsConfig := aws.NewConfig()
	awsConfig.Region = aws.String(region)
	sess := session.Must(session.NewSession(awsConfig))
	api := s3.New(sess)

	return &client{
		bucket: bucket,
		region: region,
		prefix: prefix,
		api:    api,
	}
}

// NewClientWithAPI is used by tests to inject a stub S3 API.
func NewClientWithAPI(bucket, region, prefix string, api s3iface.S3API) Lister {
	return &client{
		bucket: bucket,
		region: region,
		prefix: prefix,
		api:    api,
	}
}

type client struct {
	region string
	bucket string
	prefix string
	api    s3iface.S3API
}

func (s *client) List(key string) (keys []string, err error) {
	keys = make([]string, 0, 1000)
	lastKey := ""
	for {
		params := &s3.ListObjectsInput{
			Bucket:  aws.String(s.bucket),
			Marker:  aws.String(lastKey),
			MaxKeys: aws.Int64(1000),
			Prefix:  aws.String(s.getKeyWithPrefix(key)),
		}
		resp, err := s.api.ListObjects(params)
		if err != nil {
			return nil, err
		}
		for _, v := range resp.Contents {
			keys = append(keys, *v.Key)
		}
		if len(keys) > 0 {
			lastKey = keys[len(keys)-1]
		}
		if resp.IsTruncated == nil || !*resp.IsTruncated {
			break
		}
	}
	return
}

func (s *client) getKeyWithPrefix(key string) string {
	if s.prefix != "" {
		return strings.TrimRight(s.prefix, "/") + "/" + key // ensure single slash after prefix.
	}
	return key
}
