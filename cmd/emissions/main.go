package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/traffic-emissions/internal/db"
	"github.com/ukydev/traffic-emissions/internal/engine"
	"github.com/ukydev/traffic-emissions/internal/factors"
	"github.com/ukydev/traffic-emissions/internal/models"
	"github.com/ukydev/traffic-emissions/internal/report"
	"github.com/ukydev/traffic-emissions/internal/sim"
	"github.com/ukydev/traffic-emissions/internal/stream"
)

func main() {
	godotenv.Load()

	mode := os.Getenv("EMISSIONS_MODE")
	if mode == "" {
		mode = "batch"
	}
	if mode != "batch" && mode != "stream" && mode != "both" {
		log.WithField("mode", mode).Fatal("EMISSIONS_MODE must be batch, stream or both")
	}

	outputDir := os.Getenv("OUTPUT_DIR")
	if outputDir == "" {
		outputDir = "output"
	}

	cfg := sim.Config{
		Binary:    os.Getenv("SUMO_BINARY"),
		NetFile:   os.Getenv("SUMO_NET_FILE"),
		RouteFile: os.Getenv("SUMO_ROUTE_FILE"),
	}
	if files := os.Getenv("SUMO_ADDITIONAL_FILES"); files != "" {
		cfg.AdditionalFiles = strings.Split(files, ",")
	}
	if v := os.Getenv("SUMO_STEP_LENGTH"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.StepLength = f
		}
	}

	catalog := factors.NewCatalog()
	if path := os.Getenv("FACTOR_FILE"); path != "" {
		loaded, err := factors.Load(path)
		if err != nil {
			log.WithError(err).Fatal("Failed to load emission factor file")
		}
		catalog = loaded
	}

	runID := time.Now().Format("20060102-150405")
	log.WithFields(log.Fields{
		"run_id": runID,
		"mode":   mode,
		"net":    cfg.NetFile,
		"routes": cfg.RouteFile,
	}).Info("Starting emissions run")

	runner := &engine.Runner{
		Catalog: catalog,
		Tracker: engine.NewTracker(),
	}
	if mode == "stream" || mode == "both" {
		runner.Recorder = engine.NewRecorder(runID, catalog)

		if broker := os.Getenv("MQTT_BROKER"); broker != "" {
			publisher, err := stream.Connect(broker, "emissions-"+runID, os.Getenv("MQTT_TOPIC_PREFIX"))
			if err != nil {
				log.WithError(err).Fatal("Failed to connect to MQTT broker")
			}
			defer publisher.Close()
			runner.Sink = publisher
		}
	}

	session, err := sim.Start(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to start simulator session")
	}
	runner.Session = session

	if err := runner.Run(); err != nil {
		log.WithError(err).Fatal("Simulation run failed")
	}

	now := time.Now()
	if mode == "batch" || mode == "both" {
		aggregates := engine.Aggregate(runID, runner.Tracker.States(), catalog)
		if _, err := report.WriteAggregates(outputDir, now, aggregates); err != nil {
			log.WithError(err).Fatal("Failed to write aggregate report")
		}
		if _, err := report.WriteVehicles(outputDir, now, runner.Tracker.States()); err != nil {
			log.WithError(err).Fatal("Failed to write vehicle report")
		}
		persistAggregates(runID, aggregates)
	}
	if mode == "stream" || mode == "both" {
		if _, err := report.WriteEvents(outputDir, now, runner.Recorder.Events()); err != nil {
			log.WithError(err).Fatal("Failed to write event report")
		}
		persistEvents(runID, runner.Recorder.Events())
	}

	log.WithField("run_id", runID).Info("Run complete")
}

func mongoDatabase() string {
	name := os.Getenv("MONGO_DB")
	if name == "" {
		name = "emissions"
	}
	return name
}

// persistAggregates stores batch results in MongoDB when MONGO_URI is set.
func persistAggregates(runID string, aggregates []models.TypeAggregate) {
	if os.Getenv("MONGO_URI") == "" {
		return
	}
	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	coll := &db.MongoAggregateCollection{Collection: client.Database(mongoDatabase()).Collection("aggregates")}
	if err := coll.InsertAggregates(context.Background(), aggregates); err != nil {
		log.WithError(err).Fatal("Failed to store aggregates")
	}
	log.WithFields(log.Fields{"run_id": runID, "count": len(aggregates)}).Info("Aggregates stored")
}

// persistEvents stores streaming results in MongoDB when MONGO_URI is set.
func persistEvents(runID string, events []models.EmissionEvent) {
	if os.Getenv("MONGO_URI") == "" {
		return
	}
	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	coll := &db.MongoEventCollection{Collection: client.Database(mongoDatabase()).Collection("events")}
	if err := coll.InsertEvents(context.Background(), events); err != nil {
		log.WithError(err).Fatal("Failed to store emission events")
	}
	log.WithFields(log.Fields{"run_id": runID, "count": len(events)}).Info("Emission events stored")
}
