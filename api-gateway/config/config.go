package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Khizarkk7/storefront-backend/services/common/auth"
)

// Auth modes for a route.
const (
	AuthPublic   = "public"   // identity headers stripped, token ignored
	AuthOptional = "optional" // token used when valid, anonymous otherwise
	AuthRequired = "required" // 401 without a valid access token
)

// Rule sends every request whose path starts with Prefix (on a segment
// boundary) to Service. The longest matching prefix wins; Methods narrows a
// rule to some verbs.
type Rule struct {
	Prefix   string   `mapstructure:"prefix"`
	Service  string   `mapstructure:"service"`
	Auth     string   `mapstructure:"auth"`
	Roles    []string `mapstructure:"roles"`
	Methods  []string `mapstructure:"methods"`
	Internal bool     `mapstructure:"internal"`
}

type Config struct {
	Port               string
	JWTSecret          string
	AllowedOrigins     []string
	RateLimitPerMinute int
	RateLimitBurst     int
	UpstreamTimeout    time.Duration
	Services           map[string]string
	Routes             []Rule
}

var defaultServices = map[string]string{
	"auth":         "http://auth-service:8081",
	"product":      "http://product-service:8082",
	"order":        "http://order-service:8083",
	"inventory":    "http://inventory-service:8084",
	"user":         "http://user-service:8085",
	"cart":         "http://cart-service:8086",
	"payment":      "http://payment-service:8087",
	"shop":         "http://shop-service:8088",
	"promotion":    "http://promotion-service:8089",
	"notification": "http://notification-service:8090",
	"bff":          "http://bff-service:8091",
}

var admins = []string{auth.RoleSystemAdmin, auth.RoleShopAdmin}

// DefaultRoutes is the route table used when the config file has none.
func DefaultRoutes() []Rule {
	return []Rule{
		{Prefix: "/auth", Service: "auth", Auth: AuthOptional},
		{Prefix: "/users", Service: "user", Auth: AuthRequired},
		{Prefix: "/shops", Service: "shop", Auth: AuthOptional},
		{Prefix: "/menus", Service: "shop", Auth: AuthRequired},
		{Prefix: "/products", Service: "product", Auth: AuthOptional},
		{Prefix: "/stock", Service: "inventory", Auth: AuthRequired, Roles: admins},
		{Prefix: "/stock/check", Service: "inventory", Internal: true},
		{Prefix: "/stock/reserve", Service: "inventory", Internal: true},
		{Prefix: "/stock/release", Service: "inventory", Internal: true},
		{Prefix: "/stock/confirm", Service: "inventory", Internal: true},
		{Prefix: "/cart", Service: "cart", Auth: AuthOptional},
		{Prefix: "/wishlist", Service: "cart", Auth: AuthOptional},
		{Prefix: "/orders", Service: "order", Auth: AuthOptional},
		{Prefix: "/payment", Service: "payment", Auth: AuthOptional},
		{Prefix: "/stripe/webhook", Service: "payment", Auth: AuthPublic, Methods: []string{"POST"}},
		{Prefix: "/promotions", Service: "promotion", Auth: AuthOptional},
		{Prefix: "/promotions/redeem", Service: "promotion", Internal: true},
		{Prefix: "/notifications", Service: "notification", Auth: AuthRequired, Roles: []string{auth.RoleSystemAdmin}},
		{Prefix: "/storefront", Service: "bff", Auth: AuthPublic, Methods: []string{"GET"}},
		{Prefix: "/dashboard", Service: "bff", Auth: AuthRequired, Roles: admins},
	}
}

// New returns a viper instance reading gateway.yaml (optional) from the
// working directory or /etc/gateway, with GATEWAY_* env overrides.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName("gateway")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/gateway")
	v.SetEnvPrefix("GATEWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// the shared secret and origins keep their unprefixed names too
	_ = v.BindEnv("jwt_secret", "GATEWAY_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("allowed_origins", "GATEWAY_ALLOWED_ORIGINS", "ALLOWED_ORIGINS")
	_ = v.BindEnv("port", "GATEWAY_PORT", "PORT")

	v.SetDefault("port", "8080")
	v.SetDefault("allowed_origins", "http://localhost:3000")
	v.SetDefault("rate_limit.per_minute", 120)
	v.SetDefault("rate_limit.burst", 40)
	v.SetDefault("upstream_timeout", "30s")
	for name, u := range defaultServices {
		v.SetDefault("services."+name, u)
	}
	return v
}

// Load reads the config file if present and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read gateway config: %w", err)
		}
	}

	cfg := &Config{
		Port:               v.GetString("port"),
		JWTSecret:          v.GetString("jwt_secret"),
		AllowedOrigins:     splitList(v.GetStringSlice("allowed_origins")),
		RateLimitPerMinute: v.GetInt("rate_limit.per_minute"),
		RateLimitBurst:     v.GetInt("rate_limit.burst"),
		UpstreamTimeout:    v.GetDuration("upstream_timeout"),
		Services:           make(map[string]string, len(defaultServices)),
	}
	for name := range defaultServices {
		cfg.Services[name] = v.GetString("services." + name)
	}
	for name := range v.GetStringMapString("services") {
		cfg.Services[name] = v.GetString("services." + name)
	}

	cfg.Routes = DefaultRoutes()
	if v.IsSet("routes") {
		var routes []Rule
		if err := v.UnmarshalKey("routes", &routes); err != nil {
			return nil, fmt.Errorf("parse routes: %w", err)
		}
		cfg.Routes = routes
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.RateLimitPerMinute <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("rate_limit.per_minute and rate_limit.burst must be positive")
	}
	if c.UpstreamTimeout <= 0 {
		return errors.New("upstream_timeout must be positive")
	}
	if len(c.AllowedOrigins) == 0 {
		return errors.New("allowed_origins must not be empty")
	}
	for i := range c.Routes {
		r := &c.Routes[i]
		if !strings.HasPrefix(r.Prefix, "/") || r.Prefix == "/" {
			return fmt.Errorf("route %d: prefix %q must start with / and name a service path", i, r.Prefix)
		}
		r.Prefix = strings.TrimRight(r.Prefix, "/")
		if r.Auth == "" {
			r.Auth = AuthOptional
		}
		switch r.Auth {
		case AuthPublic, AuthOptional, AuthRequired:
		default:
			return fmt.Errorf("route %s: unknown auth mode %q", r.Prefix, r.Auth)
		}
		if len(r.Roles) > 0 && r.Auth != AuthRequired {
			return fmt.Errorf("route %s: roles need auth %q", r.Prefix, AuthRequired)
		}
		for j, role := range r.Roles {
			if !auth.ValidRole(auth.NormalizeRole(role)) {
				return fmt.Errorf("route %s: unknown role %q", r.Prefix, role)
			}
			r.Roles[j] = auth.NormalizeRole(role)
		}
		for j, m := range r.Methods {
			r.Methods[j] = strings.ToUpper(m)
		}
		if r.Internal {
			continue
		}
		base, ok := c.Services[r.Service]
		if !ok || base == "" {
			return fmt.Errorf("route %s: unknown service %q", r.Prefix, r.Service)
		}
		if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("service %s: invalid url %q", r.Service, base)
		}
	}
	return nil
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
