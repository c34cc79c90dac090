package sidequest

import (
	"fmt"
	"os"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Bot     BotConfig     `toml:"bot"`
	Kafka   KafkaConfig   `toml:"kafka"`
	Redis   RedisConfig   `toml:"redis"`
	Sheets  SheetsConfig  `toml:"sheets"`
	API     APIConfig     `toml:"api"`
	Sweeper SweeperConfig `toml:"sweeper"`
}

type BotConfig struct {
	Token             string         `toml:"token"`
	DevGuilds         []snowflake.ID `toml:"dev_guilds"`
	GuildID           snowflake.ID   `toml:"guild_id"`
	QuestGiverRoleID  snowflake.ID   `toml:"quest_giver_role_id"`
	ParticipantRoleID snowflake.ID   `toml:"participant_role_id"`
}

type KafkaConfig struct {
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
	Group   string   `toml:"group"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type SheetsConfig struct {
	SpreadsheetID   string `toml:"spreadsheet_id"`
	CredentialsFile string `toml:"credentials_file"`
}

type APIConfig struct {
	Address string `toml:"address"`
}

type SweeperConfig struct {
	IntervalMinutes int `toml:"interval_minutes"`
}
