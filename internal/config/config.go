package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Valores aceitos nas opções de dataset
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"

	EncodingUTF8        = "utf-8"
	EncodingLatin1      = "latin1"
	EncodingISO88591    = "iso-8859-1"
	EncodingWindows1252 = "windows-1252"
	EncodingCP1252      = "cp1252"

	GroupingMunicipality = "municipality"
	GroupingCompound     = "compound"
)

type Config struct {
	App           App           `mapstructure:",squash"`
	Server        Server        `mapstructure:",squash"`
	Database      Database      `mapstructure:",squash"`
	Dataset       Dataset       `mapstructure:",squash"`
	DatasetReload DatasetReload `mapstructure:",squash"`
	Auth          Auth          `mapstructure:",squash"`
	Cors          Cors          `mapstructure:",squash"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN         string `mapstructure:"-"`
	Driver      string `mapstructure:"database_driver"`
	Password    string `mapstructure:"database_password"`
	URL         string `mapstructure:"database_url"`
	User        string `mapstructure:"database_user"`
	VisitsTable string `mapstructure:"database_visits_table"`
}

type Dataset struct {
	Source      string `mapstructure:"dataset_source"`
	CSVPath     string `mapstructure:"dataset_csv_path"`
	Delimiter   string `mapstructure:"dataset_csv_delimiter"`
	Encoding    string `mapstructure:"dataset_csv_encoding"`
	UF          string `mapstructure:"dataset_uf"`
	Grouping    string `mapstructure:"dataset_grouping"`
	RankingSize int    `mapstructure:"dataset_ranking_size"`
}

type DatasetReload struct {
	CronSchedule string `mapstructure:"dataset_reload_cron"`
	Enabled      bool   `mapstructure:"dataset_reload_enabled"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Auth struct {
	Secret            string        `mapstructure:"auth_secret"`
	AdminEmail        string        `mapstructure:"auth_admin_email"`
	AdminPasswordHash string        `mapstructure:"auth_admin_password_hash"`
	TokenTTL          time.Duration `mapstructure:"auth_token_ttl"`
}

type Cors struct {
	AllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/sus_dashboard?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_VISITS_TABLE", "atendimentos")

	// Defaults da base de atendimentos
	viper.SetDefault("DATASET_SOURCE", SourceCSV)
	viper.SetDefault("DATASET_CSV_PATH", "atendimentos.csv")
	viper.SetDefault("DATASET_CSV_DELIMITER", ",")
	viper.SetDefault("DATASET_CSV_ENCODING", EncodingUTF8)
	viper.SetDefault("DATASET_UF", "CE")                       // Base de um único estado
	viper.SetDefault("DATASET_GROUPING", GroupingMunicipality) // Agrupa só pelo nome e valida atributos
	viper.SetDefault("DATASET_RANKING_SIZE", 5)                // Top 5 / Bottom 5

	viper.SetDefault("DATASET_RELOAD_CRON", "0 2 * * *") // Todos os dias às 2h da manhã
	viper.SetDefault("DATASET_RELOAD_ENABLED", false)

	viper.SetDefault("AUTH_SECRET", "your_secret_key")
	viper.SetDefault("AUTH_ADMIN_EMAIL", "admin@localhost")
	viper.SetDefault("AUTH_ADMIN_PASSWORD_HASH", "")
	viper.SetDefault("AUTH_TOKEN_TTL", "24h")

	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:8501")

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Debug("Usando variáveis de ambiente (viper não conseguiu ler .env): ", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	for i, origin := range config.Cors.AllowedOrigins {
		config.Cors.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate verifica as opções que não podem ser corrigidas com valores padrão
func (c *Config) Validate() error {
	switch c.Dataset.Source {
	case SourceCSV, SourcePostgres:
	default:
		return fmt.Errorf("config: fonte de dados inválida: %q", c.Dataset.Source)
	}

	switch strings.ToLower(c.Dataset.Encoding) {
	case EncodingUTF8, EncodingLatin1, EncodingISO88591, EncodingWindows1252, EncodingCP1252:
	default:
		return fmt.Errorf("config: codificação inválida: %q", c.Dataset.Encoding)
	}

	switch strings.ToLower(strings.TrimSpace(c.Dataset.Grouping)) {
	case GroupingMunicipality, GroupingCompound:
	default:
		return fmt.Errorf("config: agrupamento inválido: %q", c.Dataset.Grouping)
	}

	if c.Dataset.RankingSize <= 0 {
		return fmt.Errorf("config: tamanho do ranking deve ser positivo: %d", c.Dataset.RankingSize)
	}

	if _, err := c.Dataset.DelimiterRune(); err != nil {
		return err
	}

	return nil
}

// DelimiterRune retorna o delimitador do CSV como rune. Aceita "tab" e "\t".
func (d Dataset) DelimiterRune() (rune, error) {
	switch d.Delimiter {
	case "", ",":
		return ',', nil
	case "tab", `\t`, "\t":
		return '\t', nil
	}

	runes := []rune(d.Delimiter)
	if len(runes) != 1 {
		return 0, fmt.Errorf("config: delimitador inválido: %q", d.Delimiter)
	}
	return runes[0], nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Debug("Nenhum arquivo .env encontrado, usando apenas variáveis de ambiente")
}
