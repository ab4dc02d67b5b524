package cli

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/unpushed/internal/discovery"
	"github.com/temirov/unpushed/internal/gitrepo"
	"github.com/temirov/unpushed/internal/gitstatus"
	"github.com/temirov/unpushed/internal/scan"
	"github.com/temirov/unpushed/internal/utils"
	pathutils "github.com/temirov/unpushed/internal/utils/path"
)

const (
	applicationNameConstant                 = "unpushed [path]"
	applicationShortDescriptionConstant     = "Find local git repositories with unpushed commits"
	applicationLongDescriptionConstant      = "unpushed walks a directory tree, inspects every git repository it finds, and prints the paths of repositories whose current branch carries commits missing from its upstream."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level (off, error, warn, info, debug, trace)."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	verboseFlagNameConstant                 = "verbose"
	verboseFlagShorthandConstant            = "v"
	verboseFlagUsageConstant                = "Log every inspected repository (forces the info log level)."
	threadsFlagNameConstant                 = "threads"
	threadsFlagShorthandConstant            = "t"
	threadsFlagUsageConstant                = "Number of repositories inspected concurrently (defaults to the CPU count)."
	missingHeadFlagNameConstant             = "missing-head"
	missingHeadFlagUsageConstant            = "Print repositories without a resolvable HEAD instead of repositories with unpushed commits."
	excludeFromFlagNameConstant             = "exclude-from"
	excludeFromFlagUsageConstant            = "Path to a file with gitignore-style patterns for directories to skip."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	scanConfigurationKeyConstant            = "scan"
	environmentPrefixConstant               = "UNPUSHED"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	invalidWorkerCountTemplateConstant      = "invalid thread count %d: must be a positive number"
	excludeFileLoadErrorTemplateConstant    = "unable to load exclude patterns: %w"
	defaultConfigurationSearchPathConstant  = "."
	defaultScanRootConstant                 = "."
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Scan   scan.CommandConfiguration      `mapstructure:"scan"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	verboseFlagValue      bool
	workerCountFlagValue  int
	missingHeadFlagValue  bool
	excludeFileFlagValue  string
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runScanCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.Flags().BoolVarP(&application.verboseFlagValue, verboseFlagNameConstant, verboseFlagShorthandConstant, false, verboseFlagUsageConstant)
	cobraCommand.Flags().IntVarP(&application.workerCountFlagValue, threadsFlagNameConstant, threadsFlagShorthandConstant, 0, threadsFlagUsageConstant)
	cobraCommand.Flags().BoolVar(&application.missingHeadFlagValue, missingHeadFlagNameConstant, false, missingHeadFlagUsageConstant)
	cobraCommand.Flags().StringVar(&application.excludeFileFlagValue, excludeFromFlagNameConstant, "", excludeFromFlagUsageConstant)

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelWarn),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}
	for configurationKey, configurationValue := range scan.DefaultConfigurationValues(scanConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	application.applyScanFlagOverrides(command)
	application.resolveLogSettings(command)

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) applyScanFlagOverrides(command *cobra.Command) {
	if command == nil {
		return
	}

	localFlags := command.Flags()
	if localFlags.Changed(threadsFlagNameConstant) {
		application.configuration.Scan.WorkerCount = application.workerCountFlagValue
	}
	if localFlags.Changed(missingHeadFlagNameConstant) {
		application.configuration.Scan.MissingHeadMode = application.missingHeadFlagValue
	}
	if localFlags.Changed(excludeFromFlagNameConstant) {
		application.configuration.Scan.ExcludeFile = application.excludeFileFlagValue
	}
}

// resolveLogSettings applies the flag precedence for log output: an explicit
// --log-level always wins over the missing-head default of error, and
// --verbose wins over everything.
func (application *Application) resolveLogSettings(command *cobra.Command) {
	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	} else if application.configuration.Scan.MissingHeadMode {
		application.configuration.Common.LogLevel = string(utils.LogLevelError)
	}

	if application.verboseFlagValue {
		application.configuration.Common.LogLevel = string(utils.LogLevelInfo)
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}
}

func (application *Application) runScanCommand(command *cobra.Command, arguments []string) error {
	scanConfiguration := application.configuration.Scan.Sanitize()

	if len(arguments) > 0 {
		scanConfiguration.Root = arguments[0]
	}

	if scanConfiguration.WorkerCount < 0 || (command.Flags().Changed(threadsFlagNameConstant) && application.workerCountFlagValue <= 0) {
		return fmt.Errorf(invalidWorkerCountTemplateConstant, scanConfiguration.WorkerCount)
	}

	var excluder discovery.PathExcluder
	if len(scanConfiguration.ExcludeFile) > 0 {
		ignoreMatcher, ignoreLoadError := discovery.LoadIgnorePatternFile(scanConfiguration.ExcludeFile)
		if ignoreLoadError != nil {
			return fmt.Errorf(excludeFileLoadErrorTemplateConstant, ignoreLoadError)
		}
		excluder = ignoreMatcher
	}

	rootPath := pathutils.NewScanPathSanitizer().Sanitize(scanConfiguration.Root, defaultScanRootConstant)

	scanService := scan.NewService(
		discovery.NewFilesystemRepositoryWalker(excluder),
		gitstatus.NewClassifier(gitrepo.NewInspector()),
		scan.NewLineReporter(command.OutOrStdout()),
		application.logger,
	)

	return scanService.Run(command.Context(), scan.ServiceOptions{
		RootPath:          rootPath,
		WorkerCount:       scanConfiguration.WorkerCount,
		ReportMissingHead: scanConfiguration.MissingHeadMode,
	})
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
