package config

import "time"

// Notifier selects the product event notifier. When disabled, events are only logged.
type Notifier struct {
	Enabled             bool          `env:"NOTIFIER_ENABLED" envDefault:"false"`
	ProductCreatedTopic string        `env:"NOTIFIER_PRODUCT_CREATED_TOPIC" envDefault:"product-created"`
	ProductUpdatedTopic string        `env:"NOTIFIER_PRODUCT_UPDATED_TOPIC" envDefault:"product-updated"`
	PublishTimeout      time.Duration `env:"NOTIFIER_PUBLISH_TIMEOUT" envDefault:"5s"`
}
