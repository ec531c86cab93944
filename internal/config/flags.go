package config

import (
	"flag"
)

// Overrides are command line values that win over the config file. Empty
// values leave the file setting alone.
type Overrides struct {
	ConfigPath  *string
	DeviceID    *string
	MQTTBroker  *string
	PrivateKey  *string
	Actuator    *string
	DatabaseURL *string
	HTTPAddr    *string
}

func RegisterFlags(fs *flag.FlagSet) *Overrides {
	return &Overrides{
		ConfigPath:  fs.String("config", "", "Path to the YAML config file"),
		DeviceID:    fs.String("device_id", "", "The provisioned device id"),
		MQTTBroker:  fs.String("mqtt_broker", "", "MQTT broker protocol, address and port"),
		PrivateKey:  fs.String("private_key", "", "The private key for the MQTT authentication"),
		Actuator:    fs.String("actuator", "", "Actuator to drive: log or mqtt"),
		DatabaseURL: fs.String("database_url", "", "PostgreSQL connection string for the journal"),
		HTTPAddr:    fs.String("http_addr", "", "HTTP API listen address"),
	}
}

// Apply copies the set overrides into cfg and validates again.
func (o *Overrides) Apply(cfg *Config) error {
	set := func(dst *string, v *string) {
		if v != nil && *v != "" {
			*dst = *v
		}
	}
	set(&cfg.MQTT.DeviceID, o.DeviceID)
	set(&cfg.MQTT.Broker, o.MQTTBroker)
	set(&cfg.MQTT.PrivateKeyPath, o.PrivateKey)
	set(&cfg.Actuator, o.Actuator)
	set(&cfg.DatabaseURL, o.DatabaseURL)
	set(&cfg.HTTPAddr, o.HTTPAddr)

	return cfg.Validate()
}
