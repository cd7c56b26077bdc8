package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "MENUADMIN"
	configFileEnvName = envPrefix + "_CONFIG_FILE"
	dotEnvFile        = ".env"
)

type consumers struct {
	MenuChangesGroup string `mapstructure:"menu_changes_group"`
}

type topics struct {
	MenuChanges string `mapstructure:"menu_changes"`
}

type broker struct {
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	Topics             topics    `mapstructure:"topics"`
	Consumers          consumers `mapstructure:"consumers"`
}

// Enabled reports whether menu change events should be published.
func (b broker) Enabled() bool {
	return len(b.SeedBrokers) != 0
}

type api struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type upload struct {
	MaxImageBytes int64 `mapstructure:"max_image_bytes"`
}

type Table struct {
	ID             int64     `mapstructure:"id"`
	Number         string    `mapstructure:"number"`
	Name           string    `mapstructure:"name"`
	Capacity       int       `mapstructure:"capacity"`
	Location       string    `mapstructure:"location"`
	Status         string    `mapstructure:"status"`
	QRCode         string    `mapstructure:"qr_code"`
	Description    string    `mapstructure:"description"`
	CreatedAt      time.Time `mapstructure:"created_at"`
	CurrentOrderID *int64    `mapstructure:"current_order_id"`
}

type Config struct {
	LogLevel       slog.Level `mapstructure:"log_level"`
	HTTPServerAddr string     `mapstructure:"http_server_addr"`
	SQLDB          string     `mapstructure:"sql_db"`
	API            api        `mapstructure:"api"`
	Upload         upload     `mapstructure:"upload"`
	Broker         broker     `mapstructure:"broker"`
	Tables         []Table    `mapstructure:"tables"`
}

// Load reads the config file named by the MENUADMIN_CONFIG_FILE
// environment variable or the --config flag and exits on failure.
func Load() Config {
	cfg, err := LoadFile(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

// LoadFile reads the config file at path. An empty path loads defaults
// and environment variables only.
func LoadFile(path string) (Config, error) {
	const op = "config.LoadFile"

	if err := loadDotEnv(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_server_addr", ":8080")
	v.SetDefault("sql_db", "")
	v.SetDefault("api.base_url", "http://localhost:8000/api")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("upload.max_image_bytes", 5<<20)
	v.SetDefault("broker.seed_brokers", []string{})
	v.SetDefault("broker.schema_registry_urls", []string{})
	v.SetDefault("broker.topics.menu_changes", "menu-changes")
	v.SetDefault("broker.consumers.menu_changes_group", "menu-changes-group")
	v.SetDefault("tables", []map[string]any{})
}

func loadDotEnv() error {
	err := godotenv.Load(dotEnvFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid api.base_url %q", c.API.BaseURL))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("api.timeout should be positive"))
	}
	if c.Upload.MaxImageBytes <= 0 {
		errs = append(errs, errors.New("upload.max_image_bytes should be positive"))
	}

	if c.Broker.Enabled() {
		if len(c.Broker.SchemaRegistryURLs) == 0 {
			errs = append(errs, errors.New("broker.schema_registry_urls is empty"))
		}
		if c.Broker.Topics.MenuChanges == "" {
			errs = append(errs, errors.New("broker.topics.menu_changes is empty"))
		}
		if c.Broker.Consumers.MenuChangesGroup == "" {
			errs = append(errs, errors.New(
				"broker.consumers.menu_changes_group is empty",
			))
		}
	}

	seen := make(map[int64]bool, len(c.Tables))
	for _, t := range c.Tables {
		if seen[t.ID] {
			errs = append(errs, fmt.Errorf("duplicate table id %d", t.ID))
		}
		seen[t.ID] = true
	}

	return errors.Join(errs...)
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	SQLDB=%q
	Tables=%d

	API:
	BaseURL=%q
	Timeout=%q
	MaxImageBytes=%d

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	Topics:
		MenuChanges=%q
	Consumers:
		MenuChangesGroup=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		redactDSN(c.SQLDB),
		len(c.Tables),
		c.API.BaseURL,
		c.API.Timeout,
		c.Upload.MaxImageBytes,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.Topics.MenuChanges,
		c.Broker.Consumers.MenuChangesGroup,
	)
}

func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	return u.Redacted()
}
