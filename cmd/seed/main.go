// Command seed prepares a database: it creates indexes, the ticket inventory,
// the default settings document and optionally one staff member.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"parkinglot/config"
	"parkinglot/database"
	"parkinglot/database/repository"
	"parkinglot/models"
	"parkinglot/services/events"
	"parkinglot/services/parking"
	"parkinglot/services/settings"
	"parkinglot/utils"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath string
		prefix     string
		count      int
		staffName  string
		staffEmail string
		staffRole  string
	)
	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to a config file (default: ./config.yaml)")
	flagSet.StringVar(&prefix, "prefix", "", "ticket code prefix (default: TICKET_PREFIX)")
	flagSet.IntVar(&count, "count", 0, "number of tickets in the lot (default: TICKET_COUNT)")
	flagSet.StringVar(&staffName, "staff-name", "", "name of a staff member to create")
	flagSet.StringVar(&staffEmail, "staff-email", "", "email of a staff member to create")
	flagSet.StringVar(&staffRole, "staff-role", "attendant", "role of the staff member")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	config.LoadConfigFile(configPath)
	logger := utils.GetLogger()
	defer logger.Sync()
	if prefix == "" {
		prefix = config.AppConfig.TicketPrefix
	}
	if count == 0 {
		count = config.AppConfig.TicketCount
	}

	database.InitDB()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	defer database.Disconnect(context.Background())

	repos := repository.NewMongoRepos(database.DB())
	if err := repos.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}

	_, err := repos.Settings.Get(ctx)
	switch {
	case errors.Is(err, database.ErrNotFound):
		defaults := settings.Defaults()
		defaults.UpdatedAt = time.Now().UTC()
		if err := repos.Settings.Save(ctx, &defaults); err != nil {
			return fmt.Errorf("save default settings: %w", err)
		}
		logger.Info("Default settings created")
	case err != nil:
		return fmt.Errorf("load settings: %w", err)
	}
	settingsService := settings.NewSettingsService(repos.Settings, logger)

	svc := &parking.DefaultParkingService{
		Repos:     repos,
		Tx:        database.NewMongoTxRunner(database.MongoClient),
		Settings:  settingsService,
		Publisher: events.NopPublisher{},
		Logger:    logger,
	}
	added, err := svc.EnsureInventory(ctx, prefix, count)
	if err != nil {
		return err
	}
	logger.Info("Ticket inventory ready",
		zap.String("prefix", strings.ToUpper(prefix)),
		zap.Int("count", count),
		zap.Int64("added", added))

	if staffEmail != "" {
		staff := &models.Staff{
			Name:  staffName,
			Email: strings.ToLower(strings.TrimSpace(staffEmail)),
			Role:  staffRole,
		}
		if err := repos.Staff.Create(ctx, staff); err != nil {
			return err
		}
		logger.Info("Staff member ready", zap.String("email", staff.Email), zap.String("role", staff.Role))
	}
	return nil
}
