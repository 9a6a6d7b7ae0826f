// config/config.go
package config

import (
	"log"
	"os"
	"time"
)

// CollectionNames maps every entity type to its MongoDB collection name.
// Handlers receive these through InitCollections instead of reading
// environment variables at call time.
type CollectionNames struct {
	Studios      string
	Users        string
	Proposals    string
	Projects     string
	Tasks        string
	Timesheets   string
	TimeOff      string
	Variations   string
	Invoices     string
	Payments     string
	Deliverables string
	Activities   string
	Outbox       string
}

var (
	Port          string
	MongoURI      string
	DatabaseName  string
	JWTKey        []byte
	JWTExpiration time.Duration

	SMTPHost string
	SMTPPort string
	SMTPFrom string
	SMTPUser string
	SMTPPass string

	UploadDir string

	Collections CollectionNames
)

func LoadConfig() {
	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "8080"
	}

	MongoURI = os.Getenv("MONGO_URI")
	if MongoURI == "" {
		MongoURI = "mongodb://localhost:27017"
	}

	DatabaseName = os.Getenv("MONGO_DB")
	if DatabaseName == "" {
		DatabaseName = "studiopm"
	}

	JWTKey = []byte(os.Getenv("JWT_SECRET"))
	if len(JWTKey) == 0 {
		JWTKey = []byte("secret")
	}

	expireStr := os.Getenv("JWT_EXPIRE")
	dur := 24 * time.Hour
	if expireStr != "" {
		if expireStr == "7d" {
			dur = 7 * 24 * time.Hour
		} else {
			var err error
			dur, err = time.ParseDuration(expireStr)
			if err != nil {
				log.Printf("Invalid JWT_EXPIRE: %s, using 24h", expireStr)
				dur = 24 * time.Hour
			}
		}
	}
	JWTExpiration = dur

	SMTPHost = os.Getenv("SMTP_HOST")
	SMTPPort = os.Getenv("SMTP_PORT")
	if SMTPPort == "" {
		SMTPPort = "587"
	}
	SMTPFrom = os.Getenv("SMTP_FROM")
	SMTPUser = os.Getenv("SMTP_USER")
	SMTPPass = os.Getenv("SMTP_PASS")

	UploadDir = os.Getenv("UPLOAD_DIR")
	if UploadDir == "" {
		UploadDir = "./uploads"
	}

	Collections = CollectionNames{
		Studios:      "studios",
		Users:        "users",
		Proposals:    "proposals",
		Projects:     "projects",
		Tasks:        "tasks",
		Timesheets:   "timesheets",
		TimeOff:      "timeoff_requests",
		Variations:   "variations",
		Invoices:     "invoices",
		Payments:     "payments",
		Deliverables: "deliverables",
		Activities:   "activities",
		Outbox:       "notification_outbox",
	}
}
