// Package mqttconn builds the MQTT client shared by commands, telemetry and
// the MQTT actuator.
package mqttconn

import (
	"context"
	"crypto/tls"
	"log"
	"os"
	"strings"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
)

const (
	DefaultBroker    = "tcp://localhost:1883"
	DefaultAlgorithm = "RS256"
	DefaultUsername  = "unused"

	connectTimeout = 5 * time.Second
	tokenLifetime  = 24 * time.Hour
)

type Config struct {
	Broker         string `yaml:"broker"`
	DeviceID       string `yaml:"device_id"`
	ClientID       string `yaml:"client_id"`
	Username       string `yaml:"username"`
	PrivateKeyPath string `yaml:"private_key"`
	Algorithm      string `yaml:"algorithm"`
	Audience       string `yaml:"audience"`
}

func (c Config) withDefaults() Config {
	if c.Broker == "" {
		c.Broker = DefaultBroker
	}
	if c.ClientID == "" {
		c.ClientID = c.DeviceID
	}
	if c.Username == "" {
		c.Username = DefaultUsername
	}
	if c.Algorithm == "" {
		c.Algorithm = DefaultAlgorithm
	}
	return c
}

// Password signs a JWT with the device private key. The broker uses it as
// the MQTT password.
func Password(keyData []byte, algorithm string, audience string, now time.Time) (string, error) {
	var key interface{}
	var err error
	switch algorithm {
	case "RS256":
		key, err = jwt.ParseRSAPrivateKeyFromPEM(keyData)
	case "ES256":
		key, err = jwt.ParseECPrivateKeyFromPEM(keyData)
	default:
		return "", errors.Errorf("unknown algorithm: %s", algorithm)
	}
	if err != nil {
		return "", errors.Wrap(err, "could not parse private key")
	}

	token := jwt.NewWithClaims(jwt.GetSigningMethod(algorithm), &jwt.StandardClaims{
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(tokenLifetime).Unix(),
		Audience:  audience,
	})
	pass, err := token.SignedString(key)
	if err != nil {
		return "", errors.Wrap(err, "could not sign token")
	}
	return pass, nil
}

// ClientOptions returns the paho options for cfg. A password is only set
// when a private key is configured.
func ClientOptions(cfg Config) (*mqtt.ClientOptions, error) {
	cfg = cfg.withDefaults()
	if cfg.DeviceID == "" {
		return nil, errors.New("device id is required")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetAutoReconnect(true).
		SetProtocolVersion(4) // MQTT 3.1.1

	if strings.HasPrefix(cfg.Broker, "ssl://") || strings.HasPrefix(cfg.Broker, "tls://") {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	if cfg.PrivateKeyPath != "" {
		keyData, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, errors.Wrap(err, "could not read private key")
		}
		pass, err := Password(keyData, cfg.Algorithm, cfg.Audience, time.Now())
		if err != nil {
			return nil, err
		}
		opts.SetPassword(pass)
	}

	return opts, nil
}

// Connect keeps retrying until the broker accepts the connection or ctx is
// done.
func Connect(ctx context.Context, cfg Config) (mqtt.Client, error) {
	opts, err := ClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log.Printf("MQTT broker: %v", opts.Servers)
	log.Println("MQTT client ID:", opts.ClientID)

	client := mqtt.NewClient(opts)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log.Printf("Connecting MQTT...")
		tok := client.Connect()
		if !tok.WaitTimeout(connectTimeout) {
			log.Println("Connection Timeout")
			continue
		}
		if err := tok.Error(); err != nil {
			log.Printf("MQTT connect failed: %v", err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(connectTimeout):
			}
			continue
		}
		log.Printf("..Connected")
		return client, nil
	}
}
