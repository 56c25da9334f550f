/*
main.go - Application entry point

PURPOSE:
  Opens a hotel database, optionally replaces its contents with a demo
  layout, then simulates a window of days and logs occupancy and revenue.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Configure logging
  3. Open SQLite store and hydrate both repositories
  4. Build services and controller for the chosen role
  5. Load scenario (if any), run the simulator, log the report

COMMAND-LINE FLAGS:
  -db         SQLite database path (default: hotel.db)
              Use ":memory:" for an in-memory database
  -role       admin | receptionist (default: admin)
  -scenario   Demo layout to load first: empty | boutique (default: none)
  -from       First simulated day, YYYY-MM-DD (default: today)
  -days       Number of days to simulate (default: 14)
  -walk-ins   Random walk-in parties tried per day (default: 0)
  -log-level  debug | info | warn | error (default: info)

SHUTDOWN:
  SIGINT/SIGTERM cancel the simulation between days; the store is closed
  on the way out.

EXAMPLES:
  # Simulate June on the boutique layout
  ./hotelsim -db=":memory:" -scenario=boutique -from=2024-06-01 -days=30

  # Let walk-ins fill an existing hotel, with debug logs
  ./hotelsim -db="./data/hotel.db" -walk-ins=3 -log-level=debug

SEE ALSO:
  - api/controller.go: Commands and reads
  - sim/simulator.go: Day-by-day projection
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/warp/hotel-engine/api"
	"github.com/warp/hotel-engine/hotel"
	"github.com/warp/hotel-engine/sim"
	"github.com/warp/hotel-engine/store/sqlite"
)

func main() {
	// Flags
	dbPath := flag.String("db", "hotel.db", "SQLite database path")
	roleName := flag.String("role", "admin", "controller role: admin or receptionist")
	scenario := flag.String("scenario", "", "demo layout to load first (empty, boutique)")
	fromStr := flag.String("from", "", "first simulated day, YYYY-MM-DD (default: today)")
	days := flag.Int("days", 14, "number of days to simulate")
	walkIns := flag.Int("walk-ins", 0, "random walk-in parties tried per day")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		log.Warnf("Invalid log level '%s', defaulting to INFO", *logLevel)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if err := run(log, *dbPath, *roleName, *scenario, *fromStr, *days, *walkIns); err != nil {
		log.WithError(err).Fatal("hotelsim failed")
	}
}

func run(log *logrus.Logger, dbPath, roleName, scenario, fromStr string, days, walkIns int) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	role, err := api.ParseRole(roleName)
	if err != nil {
		return err
	}
	from := hotel.Today()
	if fromStr != "" {
		if from, err = hotel.ParseDate(fromStr); err != nil {
			return err
		}
	}

	// Initialize store
	store, err := sqlite.New(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	hotels := hotel.NewHotelRepository(store, log)
	if err := hotels.Load(ctx); err != nil {
		return err
	}
	bookings := hotel.NewReservationRepository(store, log)
	if err := bookings.Load(ctx); err != nil {
		return err
	}

	controller := api.NewController(
		hotel.NewHotelService(hotels),
		hotel.NewReservationService(bookings),
		role,
		api.WithLogger(log),
	)
	log.WithFields(logrus.Fields{
		"db": dbPath, "role": role.String(), "floors": len(controller.Floors()), "rooms": len(controller.Rooms()),
	}).Info("hotel loaded")

	if scenario != "" {
		if err := api.LoadScenario(ctx, controller, scenario); err != nil {
			return err
		}
	}

	simulator := sim.New(controller, sim.Config{Arrivals: walkIns}, log)
	report, err := simulator.Run(ctx, from, days)
	if err != nil {
		return err
	}

	for _, d := range report.Days {
		log.WithFields(logrus.Fields{
			"date":      d.Date.String(),
			"occupied":  d.Unavailable,
			"free":      d.Available,
			"occupancy": d.Occupancy.String(),
			"revenue":   d.Revenue.StringFixed(2),
			"walk_ins":  d.Booked,
			"to_date":   d.Cumulative.StringFixed(2),
		}).Info("day")
	}
	log.WithFields(logrus.Fields{
		"from":              report.From.String(),
		"days":              len(report.Days),
		"revenue":           report.Revenue.StringFixed(2),
		"projected_income":  report.ProjectedIncome.StringFixed(2),
		"average_occupancy": report.AverageOccupancy().String(),
		"walk_ins":          report.Booked,
	}).Info("simulation complete")
	return nil
}
