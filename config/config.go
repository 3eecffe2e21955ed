package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string
	Version     string
	ServerPort  int

	DatabaseDbPath       string
	DatabaseCacheAddress string
	DatabaseCachePort    int

	KafkaBrokers       string
	KafkaRawDataTopic  string
	KafkaConsumerGroup string

	SecurityJWTSecret   string
	SecurityJWTTTLHours int
	GoogleClientID      string

	AnalysisDefaultMethod string

	CorsOrigins string
	DomainName  string
}

func InitConfig() (Config, error) {
	viper.SetEnvPrefix("VITALS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("VERSION", "dev")
	viper.SetDefault("SERVER_PORT", 8280)
	viper.SetDefault("DATABASE_DB_PATH", "data/vitals.db")
	viper.SetDefault("DATABASE_CACHE_ADDRESS", "localhost")
	viper.SetDefault("DATABASE_CACHE_PORT", 6379)
	viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
	viper.SetDefault("KAFKA_RAW_DATA_TOPIC", "raw-health-data")
	viper.SetDefault("KAFKA_CONSUMER_GROUP", "vitals-ingestion")
	viper.SetDefault("SECURITY_JWT_SECRET", "")
	viper.SetDefault("SECURITY_JWT_TTL_HOURS", 24*8)
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("ANALYSIS_DEFAULT_METHOD", "iqr")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	viper.SetDefault("DOMAIN_NAME", "http://localhost:8280")

	config := Config{
		Environment:           viper.GetString("ENVIRONMENT"),
		Version:               viper.GetString("VERSION"),
		ServerPort:            viper.GetInt("SERVER_PORT"),
		DatabaseDbPath:        viper.GetString("DATABASE_DB_PATH"),
		DatabaseCacheAddress:  viper.GetString("DATABASE_CACHE_ADDRESS"),
		DatabaseCachePort:     viper.GetInt("DATABASE_CACHE_PORT"),
		KafkaBrokers:          viper.GetString("KAFKA_BROKERS"),
		KafkaRawDataTopic:     viper.GetString("KAFKA_RAW_DATA_TOPIC"),
		KafkaConsumerGroup:    viper.GetString("KAFKA_CONSUMER_GROUP"),
		SecurityJWTSecret:     viper.GetString("SECURITY_JWT_SECRET"),
		SecurityJWTTTLHours:   viper.GetInt("SECURITY_JWT_TTL_HOURS"),
		GoogleClientID:        viper.GetString("GOOGLE_CLIENT_ID"),
		AnalysisDefaultMethod: viper.GetString("ANALYSIS_DEFAULT_METHOD"),
		CorsOrigins:           viper.GetString("CORS_ORIGINS"),
		DomainName:            viper.GetString("DOMAIN_NAME"),
	}

	return config, nil
}
