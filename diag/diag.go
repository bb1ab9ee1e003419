// Package diag publishes hub stat lines to an MQTT topic. Non-authoritative:
// lines are dropped when the publisher falls behind, and the hub runs
// unchanged if the broker is unreachable.
package diag

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Broker   string
	ClientID string
	Topic    string
}

type Publisher struct {
	Config *Config

	client mqtt.Client
	lineCh chan string
}

func NewPublisher(fileName string) (*Publisher, error) {
	dir, err := filepath.Abs(filepath.Dir(os.Args[0]))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to determine binary location")
	}
	file, err := os.Open(filepath.Join(dir, fileName))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open file %s", fileName)
	}
	defer file.Close()
	return NewPublisherFromReader(file)
}

func NewPublisherFromReader(configReader io.Reader) (*Publisher, error) {
	configData, err := io.ReadAll(configReader)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read config reader")
	}
	config := Config{}
	if _, err := toml.Decode(string(configData), &config); err != nil {
		return nil, errors.Wrap(err, "unable to load diagnostics configuration")
	}
	if config.Broker == "" {
		return nil, errors.New("diagnostics broker is required")
	}
	if config.Topic == "" {
		config.Topic = "dashboard/stats"
	}
	return &Publisher{
		Config: &config,
		lineCh: make(chan string, 1),
	}, nil
}

// Report queues a stat line, dropping it if the publisher is behind.
func (p *Publisher) Report(line string) {
	select {
	case p.lineCh <- line:
	default:
		// if channel is full, skip
	}
}

func (p *Publisher) Open() error {
	opts := mqtt.NewClientOptions().
		AddBroker(p.Config.Broker).
		SetClientID(p.Config.ClientID)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return errors.Wrap(token.Error(), "unable to connect to diagnostics broker")
	}
	p.client = client
	log.WithField("broker", p.Config.Broker).Info("diagnostics publisher connected")
	return nil
}

func (p *Publisher) Close() error {
	if p.client == nil {
		return nil
	}
	p.client.Disconnect(250)
	p.client = nil
	return nil
}

func (p *Publisher) Name() string {
	return "diag-publisher"
}

func (p *Publisher) Start(ctx context.Context) error {
	if p.client == nil {
		return errors.New("diagnostics publisher is not connected")
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line := <-p.lineCh:
			token := p.client.Publish(p.Config.Topic, 0, false, line)
			token.Wait()
			if token.Error() != nil {
				return errors.Wrap(token.Error(), "unable to publish stat line")
			}
		}
	}
}
