package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"nmeafix/internal/nmea"
)

const DefaultWebListen = ":8080"

type Config struct {
	NMEA   NMEAConfig   `yaml:"nmea"`
	GPS    GPSConfig    `yaml:"gps"`
	Web    WebConfig    `yaml:"web"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
	UDP    UDPConfig    `yaml:"udp"`
	Record RecordConfig `yaml:"record"`
}

type NMEAConfig struct {
	// Sentences lists sentence codes ("GGA") and bundles ("gnss").
	Sentences []string `yaml:"sentences"`

	// Capabilities is resolved from Sentences by Load.
	Capabilities nmea.Capabilities `yaml:"-"`
}

type GPSConfig struct {
	Enable   bool       `yaml:"enable"`
	Source   string     `yaml:"source"`
	Device   string     `yaml:"device"`
	Baud     int        `yaml:"baud"`
	GPSDAddr string     `yaml:"gpsd_addr"`
	TCPAddr  string     `yaml:"tcp_addr"`
	File     FileConfig `yaml:"file"`
}

type FileConfig struct {
	Path  string  `yaml:"path"`
	Speed float64 `yaml:"speed"`
	Loop  bool    `yaml:"loop"`
}

type WebConfig struct {
	// Listen is the HTTP address. An explicit empty string disables the
	// server; an absent key keeps DefaultWebListen.
	Listen string `yaml:"listen"`
}

type MQTTConfig struct {
	Enable    bool   `yaml:"enable"`
	Broker    string `yaml:"broker"`
	ClientID  string `yaml:"client_id"`
	Topic     string `yaml:"topic"`
	MaxRateHz int    `yaml:"max_rate_hz"`
	QoS       int    `yaml:"qos"`
	Retain    bool   `yaml:"retain"`
}

type UDPConfig struct {
	Enable bool   `yaml:"enable"`
	Dest   string `yaml:"dest"`
}

type RecordConfig struct {
	Enable bool   `yaml:"enable"`
	Path   string `yaml:"path"`
}

var validBauds = map[int]bool{0: true, 4800: true, 9600: true, 19200: true, 38400: true, 57600: true, 115200: true, 230400: true}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(b, os.LookupEnv)
}

// Parse decodes YAML, applies environment overrides through lookup, then
// fills defaults and validates.
func Parse(b []byte, lookup func(string) (string, bool)) (Config, error) {
	cfg := Config{Web: WebConfig{Listen: DefaultWebListen}}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	if lookup != nil {
		if err := applyEnv(&cfg, lookup); err != nil {
			return Config{}, err
		}
	}

	caps, err := nmea.ParseCapabilities(cfg.NMEA.Sentences)
	if err != nil {
		return Config{}, fmt.Errorf("nmea.sentences: %v", err)
	}
	cfg.NMEA.Capabilities = caps

	cfg.GPS.Source = strings.ToLower(strings.TrimSpace(cfg.GPS.Source))
	if cfg.GPS.Source == "" {
		cfg.GPS.Source = "serial"
	}
	if cfg.GPS.Enable {
		switch cfg.GPS.Source {
		case "serial":
			if !validBauds[cfg.GPS.Baud] {
				return Config{}, fmt.Errorf("gps.baud %d is not supported", cfg.GPS.Baud)
			}
		case "gpsd":
		case "tcp":
			if strings.TrimSpace(cfg.GPS.TCPAddr) == "" {
				return Config{}, fmt.Errorf("gps.tcp_addr is required when gps.source is 'tcp'")
			}
		case "file":
			if strings.TrimSpace(cfg.GPS.File.Path) == "" {
				return Config{}, fmt.Errorf("gps.file.path is required when gps.source is 'file'")
			}
			if cfg.GPS.File.Speed == 0 {
				cfg.GPS.File.Speed = 1
			}
			if cfg.GPS.File.Speed < 0 {
				return Config{}, fmt.Errorf("gps.file.speed must be > 0")
			}
		default:
			return Config{}, fmt.Errorf("gps.source must be one of serial, gpsd, tcp, file (got %q)", cfg.GPS.Source)
		}
	}

	cfg.Web.Listen = strings.TrimSpace(cfg.Web.Listen)

	if cfg.MQTT.Enable {
		if strings.TrimSpace(cfg.MQTT.Broker) == "" {
			return Config{}, fmt.Errorf("mqtt.broker is required when mqtt.enable is true")
		}
		if cfg.MQTT.ClientID == "" {
			cfg.MQTT.ClientID = "nmeafix"
		}
		if cfg.MQTT.Topic == "" {
			cfg.MQTT.Topic = "nmeafix/fix"
		}
		if cfg.MQTT.MaxRateHz == 0 {
			cfg.MQTT.MaxRateHz = 1
		}
		if cfg.MQTT.MaxRateHz < 0 {
			return Config{}, fmt.Errorf("mqtt.max_rate_hz must be > 0")
		}
		if cfg.MQTT.QoS < 0 || cfg.MQTT.QoS > 2 {
			return Config{}, fmt.Errorf("mqtt.qos must be 0, 1 or 2")
		}
	}

	if cfg.UDP.Enable && strings.TrimSpace(cfg.UDP.Dest) == "" {
		return Config{}, fmt.Errorf("udp.dest is required when udp.enable is true")
	}

	if cfg.Record.Enable {
		if strings.TrimSpace(cfg.Record.Path) == "" {
			return Config{}, fmt.Errorf("record.path is required when record.enable is true")
		}
		if cfg.GPS.Source == "file" {
			return Config{}, fmt.Errorf("record cannot be used with gps.source=file")
		}
	}

	return cfg, nil
}

// envPrefix names the override variables, e.g. NMEAFIX_GPS_DEVICE.
const envPrefix = "NMEAFIX_"

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) error {
		v, ok := lookup(envPrefix + name)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %v", envPrefix, name, err)
		}
		*dst = b
		return nil
	}

	if v, ok := lookup(envPrefix + "SENTENCES"); ok {
		cfg.NMEA.Sentences = nil
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.NMEA.Sentences = append(cfg.NMEA.Sentences, name)
			}
		}
	}

	if err := boolean("GPS_ENABLE", &cfg.GPS.Enable); err != nil {
		return err
	}
	str("GPS_SOURCE", &cfg.GPS.Source)
	str("GPS_DEVICE", &cfg.GPS.Device)
	if v, ok := lookup(envPrefix + "GPS_BAUD"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sGPS_BAUD: %v", envPrefix, err)
		}
		cfg.GPS.Baud = n
	}
	str("GPS_GPSD_ADDR", &cfg.GPS.GPSDAddr)
	str("GPS_TCP_ADDR", &cfg.GPS.TCPAddr)
	str("GPS_FILE_PATH", &cfg.GPS.File.Path)

	str("WEB_LISTEN", &cfg.Web.Listen)

	if err := boolean("MQTT_ENABLE", &cfg.MQTT.Enable); err != nil {
		return err
	}
	str("MQTT_BROKER", &cfg.MQTT.Broker)
	str("MQTT_TOPIC", &cfg.MQTT.Topic)

	if err := boolean("UDP_ENABLE", &cfg.UDP.Enable); err != nil {
		return err
	}
	str("UDP_DEST", &cfg.UDP.Dest)

	if err := boolean("RECORD_ENABLE", &cfg.Record.Enable); err != nil {
		return err
	}
	str("RECORD_PATH", &cfg.Record.Path)
	return nil
}
