// Package config assembles runtime configuration from defaults, an optional
// .env file and SPEAKSET_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/abhisek/speakset/internal/xapi"
)

// Config holds everything the CLI and the terminal host need.
type Config struct {
	// DBPath is the SQLite database. Empty means the default data dir.
	DBPath string

	Log   LogConfig
	Actor ActorConfig

	// ActivityBase prefixes content IDs to form activity IRIs.
	ActivityBase string `validate:"required,uri"`

	// Language tags analytics text. Default: en-US.
	Language string `validate:"required,bcp47_language_tag"`
}

// LogConfig configures the log sink.
type LogConfig struct {
	File   string // Empty means next to the database.
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=text json"`
}

// ActorConfig identifies the learner in analytics.
type ActorConfig struct {
	Name string `validate:"required"`
	Mbox string `validate:"omitempty,email"` // Plain address, without mailto:.
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	name := os.Getenv("USER")
	if name == "" {
		name = "learner"
	}
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Actor: ActorConfig{
			Name: name,
		},
		ActivityBase: "urn:speakset:set",
		Language:     xapi.DefaultLanguage,
	}
}

// LoadEnvFile loads variables from path into the environment without
// overriding ones already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for unset values.
func FromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("SPEAKSET_DB"); p != "" {
		cfg.DBPath = p
	}

	if f := os.Getenv("SPEAKSET_LOG_FILE"); f != "" {
		cfg.Log.File = f
	}
	if l := os.Getenv("SPEAKSET_LOG_LEVEL"); l != "" {
		cfg.Log.Level = strings.ToLower(l)
	}
	if f := os.Getenv("SPEAKSET_LOG_FORMAT"); f != "" {
		cfg.Log.Format = strings.ToLower(f)
	}

	if n := os.Getenv("SPEAKSET_ACTOR_NAME"); n != "" {
		cfg.Actor.Name = n
	}
	if m := os.Getenv("SPEAKSET_ACTOR_MBOX"); m != "" {
		cfg.Actor.Mbox = strings.TrimPrefix(m, "mailto:")
	}

	if b := os.Getenv("SPEAKSET_ACTIVITY_BASE"); b != "" {
		cfg.ActivityBase = b
	}
	if l := os.Getenv("SPEAKSET_LANGUAGE"); l != "" {
		cfg.Language = l
	}

	return cfg
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field formats.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// XAPIActor returns the learner as an analytics actor. Without a mailbox
// the actor is identified by an account named after Actor.Name.
func (c Config) XAPIActor() xapi.Actor {
	actor := xapi.Actor{
		ObjectType: xapi.ObjectTypeAgent,
		Name:       c.Actor.Name,
	}
	if c.Actor.Mbox != "" {
		actor.Mbox = "mailto:" + c.Actor.Mbox
	} else {
		actor.Account = &xapi.Account{
			HomePage: "urn:speakset",
			Name:     c.Actor.Name,
		}
	}
	return actor
}

// ActivityID returns the activity IRI for a content item.
func (c Config) ActivityID(contentID string) string {
	base := strings.TrimRight(c.ActivityBase, "/")
	if strings.HasPrefix(base, "urn:") {
		return base + ":" + contentID
	}
	return base + "/" + contentID
}

// Builder returns an analytics builder for one attempt at a content item.
func (c Config) Builder(contentID string) *xapi.Builder {
	return xapi.NewBuilder(c.XAPIActor(), c.ActivityID(contentID), c.Language)
}
