package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// TopicSpec describes a topic to create at startup.
type TopicSpec struct {
	Name              string
	Partitions        int32
	ReplicationFactor int16
}

// EnsureTopics creates missing topics. Topics that already exist are left alone.
func EnsureTopics(ctx context.Context, client *kgo.Client, specs ...TopicSpec) error {
	admin := kadm.NewClient(client)
	for _, spec := range specs {
		partitions := spec.Partitions
		if partitions <= 0 {
			partitions = 1
		}
		replicas := spec.ReplicationFactor
		if replicas <= 0 {
			replicas = 1
		}
		resp, err := admin.CreateTopic(ctx, partitions, replicas, nil, spec.Name)
		if err == nil {
			err = resp.Err
		}
		if err != nil && !errors.Is(err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", spec.Name, err)
		}
	}
	return nil
}
