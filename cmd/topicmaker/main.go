package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lovoo/goka"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/niksmo/menu-admin/config"
	"github.com/niksmo/menu-admin/pkg/sigctx"
)

const (
	partitions        = 3
	replicationFactor = 3
	deletePolicy      = "delete"
	compactPolicy     = "compact"
)

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	if !cfg.Broker.Enabled() {
		printFail(errors.New("broker.seed_brokers is empty"))
		return
	}

	cl := createClient(cfg.Broker.SeedBrokers)
	defer cl.Close()

	changesTopic := cfg.Broker.Topics.MenuChanges
	groupTable := toGroupTable(cfg.Broker.Consumers.MenuChangesGroup)

	printStart(changesTopic, groupTable)
	defer printComplete(time.Now())

	if err := makeTopics(sigCtx, cl, deletePolicy, changesTopic); err != nil {
		printFail(err)
		return
	}

	// last change per entity, older records are compacted away
	if err := makeTopics(sigCtx, cl, compactPolicy, groupTable); err != nil {
		printFail(err)
		return
	}
}

func createClient(seedBrokers []string) *kadm.Client {
	cl, err := kadm.NewOptClient(
		kgo.SeedBrokers(seedBrokers...),
	)
	if err != nil {
		panic(err) // develop mistake
	}
	return cl
}

func makeTopics(
	ctx context.Context, cl *kadm.Client, cleanupPolicy string, topics ...string,
) error {
	minISR := "1"
	topicConfig := map[string]*string{
		"cleanup.policy":      &cleanupPolicy,
		"min.insync.replicas": &minISR,
	}

	responses, err := cl.CreateTopics(
		ctx, partitions, replicationFactor, topicConfig, topics...,
	)
	if err != nil {
		return err
	}

	var errs []error
	for _, res := range responses.Sorted() {
		switch {
		case res.Err == nil:
			fmt.Printf("topic: %q successfully created\n", res.Topic)
		case errors.Is(res.Err, kerr.TopicAlreadyExists):
			fmt.Printf("topic: %q already exists\n", res.Topic)
		default:
			errs = append(errs, fmt.Errorf("topic %q: %w", res.Topic, res.Err))
		}
	}
	return errors.Join(errs...)
}

func printStart(topics ...string) {
	fmt.Println("initializing topics...")
	for _, t := range topics {
		fmt.Printf("\t- %q\n", t)
	}
	fmt.Println()
}

func printComplete(start time.Time) {
	fmt.Printf("\ncomplete in %s\n", time.Since(start))
}

func printFail(err error) {
	fmt.Printf("failed to create topics: \n%s\n", err)
}

func toGroupTable(group string) string {
	return string(goka.GroupTable(goka.Group(group)))
}
