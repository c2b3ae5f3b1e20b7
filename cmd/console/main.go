package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/G-Node/console/console"
	"github.com/G-Node/console/console/form"
	"github.com/G-Node/console/console/worker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var allElementTypes = []form.ElementType{form.CheckboxInput, form.ColorInput, form.DateInput, form.DateTimeInput, form.EmailInput, form.HiddenInput, form.MonthInput, form.NumberInput, form.RadioInput, form.RangeInput, form.SearchInput, form.TelInput, form.TextInput, form.TimeInput, form.URLInput, form.WeekInput, form.TextArea, form.Select, form.RichText}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var dev bool

	cmd := &cobra.Command{
		Use:          "console",
		Short:        "Web form service with validated multi-forms",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().BoolVar(&dev, "dev", false, "human readable debug logging")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the example form service",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd, configPath)
			if err != nil {
				return err
			}
			log, err := newLogger(dev)
			if err != nil {
				return err
			}
			defer log.Sync()

			srv, err := console.NewService(exampleForm(), nil, exampleAction, config)
			if err != nil {
				return err
			}
			srv.SetLogger(log)
			if err := srv.Start(); err != nil {
				srv.Close()
				return err
			}
			defer srv.Stop()
			srv.WaitForInterrupt()
			return nil
		},
	}
	serve.Flags().Uint16P("port", "p", 0, "port of the web server (overrides the configuration)")
	serve.Flags().String("db", "", "database file (overrides the configuration)")

	cmd.AddCommand(serve)
	return cmd
}

func loadConfig(cmd *cobra.Command, path string) (console.Config, error) {
	config := console.DefaultConfig()
	if path != "" {
		var err error
		if config, err = console.LoadConfig(path); err != nil {
			return config, err
		}
	}
	if cmd.Flags().Changed("port") {
		port, err := cmd.Flags().GetUint16("port")
		if err != nil {
			return config, err
		}
		config.Port = port
	}
	if cmd.Flags().Changed("db") {
		dbpath, err := cmd.Flags().GetString("db")
		if err != nil {
			return config, err
		}
		config.DBPath = dbpath
	}
	return config, nil
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func exampleForm() form.Form {
	pageOneElems := []form.Element{
		{
			ID:       "name",
			Name:     "name",
			Label:    "Name",
			Required: true,
		},
		{
			ID:    "description",
			Name:  "description",
			Label: "Description",
			Type:  form.RichText,
		},
		{
			ID:          "duration",
			Name:        "duration",
			Label:       "Duration",
			Type:        form.NumberInput,
			Description: "Seconds to wait before finishing the submission.  Use for simulating long-running actions.",
		},
		{
			Name:        "filters",
			Label:       "Filters",
			Description: "Named path filters; names must be unique.",
			NameField:   "name",
			ItemPrefix:  "filter",
			Items: []form.Element{
				{
					Name:        "name",
					Label:       "Filter name",
					Pattern:     "/^[a-z][a-z0-9-]*$/",
					PatternHint: "lower case letters, digits and dashes",
					Rules:       "blank",
				},
				{
					Name:  "path",
					Label: "Path",
				},
				{
					Name:  "recursive",
					Label: "Recursive",
					Type:  form.CheckboxInput,
				},
			},
		},
	}
	examplePage := form.Page{
		Description: "Page 1 of example form",
		Elements:    pageOneElems,
	}

	demoElements := make([]form.Element, len(allElementTypes))
	for idx := range allElementTypes {
		elemType := allElementTypes[idx]
		elem := form.Element{
			ID:          fmt.Sprintf("id%s", elemType),
			Name:        string(elemType),
			Label:       fmt.Sprintf("Element type %s", elemType),
			Description: fmt.Sprintf("An element of type %s", elemType),
			ValueList: []string{ // will only have effect on the types where it's valid
				fmt.Sprintf("%s option one", elemType),
				fmt.Sprintf("%s option two", elemType),
				fmt.Sprintf("%s option three", elemType),
			},
			Type: elemType,
		}
		demoElements[idx] = elem
	}

	elementDemoPage := form.Page{
		Description: "One of each element supported by the console",
		Elements:    demoElements,
	}
	return form.Form{
		Pages:       []form.Page{examplePage, elementDemoPage},
		Name:        "Console example form",
		Description: "",
	}
}

func exampleAction(values map[string]interface{}, _, user *worker.Client) ([]string, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fail := false
	msgs := make([]string, 0, len(keys)+2)
	for _, k := range keys {
		v := values[k]
		msgs = append(msgs, fmt.Sprintf("Example action got %s: %v", k, v))
		if v == "error" {
			msgs = append(msgs, "Found 'error' value. Stopping.")
			fail = true
		}
	}

	if filters, ok := values["filters"].([]interface{}); ok {
		msgs = append(msgs, fmt.Sprintf("%d filters defined", len(filters)))
	}

	if user != nil && user.Server != "" {
		repos, err := user.ListMyRepos()
		if err != nil {
			return msgs, fmt.Errorf("failed to list repositories of %s: %w", user.UserName, err)
		}
		msgs = append(msgs, fmt.Sprintf("%s has %d repositories", user.UserName, len(repos)))
	}

	if d, ok := values["duration"].(float64); ok && d > 0 {
		msgs = append(msgs, "Waiting "+strconv.FormatFloat(d, 'f', -1, 64)+" seconds")
		time.Sleep(time.Duration(d * float64(time.Second)))
	}

	if fail {
		return msgs, fmt.Errorf("failed to run: error detected")
	}
	msgs = append(msgs, "All OK. Example action finished successfully.")
	return msgs, nil
}
