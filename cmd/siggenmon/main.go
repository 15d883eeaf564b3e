package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/siggen/pkg/remote"
)

var (
	mqttURL = "mqtt://localhost:1883/"
)

func init() {
	if val := os.Getenv("SIGGEN_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := remote.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	q.Sub("#", remote.Handler(func(topic string, payload []byte) {
		switch {
		case strings.HasSuffix(topic, "/"+remote.TopicMeta):
			if len(payload) == 0 {
				log.Printf("%s: offline", topic)
				return
			}
			log.Printf("%s: %s", topic, string(payload))
		case strings.HasSuffix(topic, "/"+remote.TopicMsg),
			strings.HasSuffix(topic, "/"+remote.TopicCmd):
			for _, line := range strings.Split(strings.TrimRight(string(payload), "\r\n"), "\n") {
				log.Printf("%s: %s", topic, strings.TrimRight(line, "\r"))
			}
		default:
			log.Printf("%s: %s", topic, string(payload))
		}
	}))
	if err := q.Connect(); err != nil {
		log.Fatalln(err)
	}
	<-(chan struct{})(nil)
}
