package app_setting

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// This is the setting for the api server binary. Secrets do not belong here,
// they come from the environment.
type ServerAppSetting struct {
	// Address the http server listens on, e.g. ":8080".
	LISTEN_ADDR string `yaml:"LISTEN_ADDR"`
	// Lifetime of issued JWTs in seconds.
	JWT_TTL_SECOND int64 `yaml:"JWT_TTL_SECOND"`
	// Page size used when a listing request carries no limit.
	DEFAULT_PAGE_LIMIT int `yaml:"DEFAULT_PAGE_LIMIT"`
	// "filtered" computes totalPages from the articles matching the listing
	// filter, "global" from every article.
	PAGINATION_COUNT_BASIS string `yaml:"PAGINATION_COUNT_BASIS"`
	// Origins allowed by CORS. Empty allows every origin.
	CORS_ALLOW_ORIGINS []string `yaml:"CORS_ALLOW_ORIGINS"`
	// How long a resolved viewer stays in redis. Zero disables the cache.
	VIEWER_CACHE_TTL_SECOND int64 `yaml:"VIEWER_CACHE_TTL_SECOND"`
	BCRYPT_COST             int   `yaml:"BCRYPT_COST"`
	// Output buffer of each event bus subscriber.
	EVENT_BUS_BUFFER int64 `yaml:"EVENT_BUS_BUFFER"`
}

func DefaultServerAppSetting() ServerAppSetting {
	return ServerAppSetting{
		LISTEN_ADDR:            ":8080",
		JWT_TTL_SECOND:         7200,
		DEFAULT_PAGE_LIMIT:     20,
		PAGINATION_COUNT_BASIS: "filtered",
		BCRYPT_COST:            10,
		EVENT_BUS_BUFFER:       100,
	}
}

// ParseServerAppSetting reads the yaml file at path on top of the defaults, so
// any key missing from the file keeps its default value.
func ParseServerAppSetting(path string) (ServerAppSetting, error) {
	c := DefaultServerAppSetting()
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return c, errors.Wrapf(err, "read app setting %s", path)
	}
	if err := yaml.UnmarshalStrict(yamlFile, &c); err != nil {
		return c, errors.Wrapf(err, "parse app setting %s", path)
	}
	if c.PAGINATION_COUNT_BASIS != "filtered" && c.PAGINATION_COUNT_BASIS != "global" {
		return c, errors.Errorf("unknown PAGINATION_COUNT_BASIS %q", c.PAGINATION_COUNT_BASIS)
	}
	return c, nil
}
