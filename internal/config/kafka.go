package config

import "time"

type Kafka struct {
	Addresses []string `env:"KAFKA_ADDRESSES" envSeparator:"," envDefault:"localhost:9092"`
	Group     string   `env:"KAFKA_GROUP" envDefault:"product-catalog"`
	// DeliveryTimeout caps how long a record may wait in the client for
	// acknowledgement, retries included.
	DeliveryTimeout time.Duration `env:"KAFKA_DELIVERY_TIMEOUT" envDefault:"10s"`
}
