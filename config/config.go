package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName      string `env:"AUTH_APP_NAME" envDefault:"auth-service"`
	AppEnv       string `env:"AUTH_APP_ENV" envDefault:"local"`
	HTTPHost     string `env:"AUTH_HTTP_HOST" envDefault:"0.0.0.0"`
	HTTPPort     string `env:"AUTH_HTTP_PORT" envDefault:"8080"`
	HTTPBasePath string `env:"AUTH_HTTP_BASE_PATH" envDefault:"/api/v1"`

	DBHost     string `env:"AUTH_DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"AUTH_DB_PORT" envDefault:"5432"`
	DBUser     string `env:"AUTH_DB_USER" envDefault:"app"`
	DBPassword string `env:"AUTH_DB_PASSWORD" envDefault:"app_password"`
	DBName     string `env:"AUTH_DB_NAME" envDefault:"authdb"`
	DBSSLMode  string `env:"AUTH_DB_SSLMODE" envDefault:"disable"`

	// Access and refresh tokens are signed with distinct secrets so a
	// leaked refresh secret cannot forge access tokens and vice versa.
	JWTSecret        string        `env:"AUTH_JWT_SECRET,required"`
	JWTRefreshSecret string        `env:"AUTH_JWT_REFRESH_SECRET,required"`
	AccessTTL        time.Duration `env:"AUTH_JWT_ACCESS_TTL" envDefault:"15m"`
	RefreshTTL       time.Duration `env:"AUTH_JWT_REFRESH_TTL" envDefault:"168h"`

	BcryptCost     int           `env:"AUTH_BCRYPT_COST" envDefault:"10"`
	RegisterStatus string        `env:"AUTH_REGISTER_STATUS" envDefault:"active"`
	ForgotTTL      time.Duration `env:"AUTH_FORGOT_TTL" envDefault:"30m"`

	NATSURL           string `env:"NATS_URL"`
	NATSSignUpSubject string `env:"NATS_SUBJECT_MAIL_SIGNUP" envDefault:"mail.user-signup"`
	NATSForgotSubject string `env:"NATS_SUBJECT_MAIL_FORGOT" envDefault:"mail.forgot-password"`
	NATSVerifySubject string `env:"NATS_SUBJECT_VERIFY_JWT" envDefault:"auth.verifyJWT"`

	MailerURL     string        `env:"AUTH_MAILER_URL"`
	MailerTimeout time.Duration `env:"AUTH_MAILER_TIMEOUT" envDefault:"5s"`
	FrontendURL   string        `env:"AUTH_FRONTEND_URL" envDefault:"http://localhost:3000"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}
