package types

type Config struct {
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint     `envconfig:"SERVER_PORT" default:"3001"`
	DatabaseURL     string   `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint     `envconfig:"READ_TIMEOUT_SEC" default:"30"`
	WriteTimeoutSec uint     `envconfig:"WRITE_TIMEOUT_SEC" default:"300"`
	LogLevel        string   `envconfig:"LOG_LEVEL" default:"info"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS"`

	DefaultProject string `envconfig:"DEFAULT_PROJECT" default:"Unknown Project"`
	MaxVoiceSize   int64  `envconfig:"MAX_VOICE_SIZE" default:"52428800"`
	MaxMediaSize   int64  `envconfig:"MAX_MEDIA_SIZE" default:"52428800"`

	// OpenAI
	OpenAIAPIKey       string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL      string `envconfig:"OPENAI_BASE_URL"`
	ExtractionModel    string `envconfig:"EXTRACTION_MODEL" default:"gpt-4o-mini"`
	VisionModel        string `envconfig:"VISION_MODEL" default:"gpt-4o"`
	TranscriptionModel string `envconfig:"TRANSCRIPTION_MODEL" default:"whisper-1"`
	LLMTimeoutSec      uint   `envconfig:"LLM_TIMEOUT_SEC" default:"120"`

	// ClickUp
	ClickUpAPIToken   string `envconfig:"CLICKUP_API_TOKEN"`
	ClickUpListID     string `envconfig:"CLICKUP_LIST_ID"`
	ClickUpBaseURL    string `envconfig:"CLICKUP_BASE_URL" default:"https://api.clickup.com/api/v2"`
	ClickUpTimeoutSec uint   `envconfig:"CLICKUP_TIMEOUT_SEC" default:"30"`

	// Media storage: "local" or "s3"
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"local"`
	UploadDir      string `envconfig:"UPLOAD_DIR" default:"uploads"`
	S3Bucket       string `envconfig:"S3_BUCKET"`
	S3Endpoint     string `envconfig:"S3_ENDPOINT"`
	S3Region       string `envconfig:"S3_REGION" default:"auto"`
	S3AccessKey    string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey    string `envconfig:"S3_SECRET_KEY"`
}
