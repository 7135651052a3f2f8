package config

type Migrate struct {
	Seed bool `env:"MIGRATE_SEED" envDefault:"false"`
}
