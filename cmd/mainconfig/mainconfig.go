package mainconfig

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	appconfig "github.com/wolfman30/realestate-concierge/internal/config"
)

// LoadAWSConfig builds the AWS config shared by every binary. With
// AWS_ENDPOINT_OVERRIDE set, the services the concierge is configured to use
// (see localServices) resolve to that endpoint; Bedrock and anything unused
// keep their regional endpoints.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	region := strings.TrimSpace(cfg.AWSRegion)
	if region == "" {
		return aws.Config{}, errors.New("mainconfig: AWS_REGION is required")
	}
	loaders := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, err
	}

	endpoint := strings.TrimSpace(cfg.AWSEndpointOverride)
	if endpoint == "" {
		return awsCfg, nil
	}
	local := localServices(cfg)
	awsCfg.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(
		func(service, _ string, _ ...interface{}) (aws.Endpoint, error) {
			if !local[service] {
				return aws.Endpoint{}, &aws.EndpointNotFoundError{}
			}
			return aws.Endpoint{URL: endpoint, PartitionID: "aws", SigningRegion: region}, nil
		},
	)
	return awsCfg, nil
}

// localServices lists the AWS services the configuration turns on: the job
// queue, DynamoDB sessions, document and archive buckets, SES email.
func localServices(cfg *appconfig.Config) map[string]bool {
	services := map[string]bool{}
	if !cfg.UseMemoryQueue || cfg.ConversationQueueURL != "" {
		services[sqs.ServiceID] = true
	}
	if cfg.SessionBackend == appconfig.SessionBackendDynamoDB {
		services[dynamodb.ServiceID] = true
	}
	if cfg.DocumentsBucket != "" || cfg.ArchiveBucket != "" {
		services[s3.ServiceID] = true
	}
	if cfg.SESFromEmail != "" {
		services[sesv2.ServiceID] = true
	}
	return services
}
