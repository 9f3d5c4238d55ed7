package config

// Config is the seoboard configuration.
type Config struct {
	DB   DBConfig   `yaml:"db" mapstructure:"db"`
	AI   AIConfig   `yaml:"ai" mapstructure:"ai"`
	Log  LogConfig  `yaml:"log" mapstructure:"log"`
	Sort SortConfig `yaml:"sort" mapstructure:"sort"`
}

type DBConfig struct {
	// Path of the SQLite database; empty means ~/.seoboard.db.
	Path string `yaml:"path" mapstructure:"path"`
}

// AIConfig configures the Gemini assistant. The key is usually supplied via
// GEMINI_API_KEY rather than written to disk.
type AIConfig struct {
	APIKey  string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	// File receives logs while the board is running; empty disables them.
	File string `yaml:"file" mapstructure:"file"`
}

type SortConfig struct {
	// Locale is a BCP 47 tag used to collate task texts.
	Locale string `yaml:"locale" mapstructure:"locale"`
}
