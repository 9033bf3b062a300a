package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/thatsimonsguy/airzone-cloud/db"
)

func main() {
	DebugCLI()
}

func DebugCLI() {
	var dbPath, command, deviceID string
	var keep time.Duration
	flag.StringVar(&dbPath, "db", "data/airzone.db", "Path to the SQLite database file")
	flag.StringVar(&command, "cmd", "", "Command to run: list, problems, show, delete, prune")
	flag.StringVar(&deviceID, "device", "", "Device ID for show and delete")
	flag.DurationVar(&keep, "keep", 7*24*time.Hour, "History to keep when pruning")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help || command == "" {
		fmt.Println("\nUsage of airzone-debug:")
		fmt.Println("  -db string\tPath to the SQLite database file (default 'data/airzone.db')")
		fmt.Println("  -cmd string\tCommand to run: list, problems, show, delete, prune")
		fmt.Println("  -device string\tDevice ID for show and delete")
		fmt.Println("  -keep duration\tHistory to keep when pruning (default 168h)")
		fmt.Println("  -help\tShow this help message")
		os.Exit(0)
	}

	var err error
	switch command {
	case "list":
		err = db.ListSnapshotsCLI(dbPath, os.Stdout)
	case "problems":
		err = db.ListProblemDevicesCLI(dbPath, os.Stdout)
	case "show":
		requireDevice(deviceID)
		err = db.ShowSnapshotCLI(dbPath, deviceID, os.Stdout)
	case "delete":
		requireDevice(deviceID)
		err = db.DeleteSnapshotCLI(dbPath, deviceID)
	case "prune":
		err = db.PruneHistoryCLI(dbPath, keep, os.Stdout)
	default:
		fmt.Println("Invalid command")
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Command %s failed: %v\n", command, err)
		os.Exit(1)
	}
	fmt.Printf("Command %s completed successfully\n", command)
}

func requireDevice(id string) {
	if id == "" {
		fmt.Println("Error: device ID is required")
		os.Exit(1)
	}
}
