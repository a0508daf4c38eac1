package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitexec/internal/batch"
	"github.com/temirov/gitexec/internal/execshell"
	"github.com/temirov/gitexec/internal/report"
	"github.com/temirov/gitexec/internal/repos/discovery"
	"github.com/temirov/gitexec/internal/repos/filesystem"
	"github.com/temirov/gitexec/internal/utils"
	flagutils "github.com/temirov/gitexec/internal/utils/flags"
	pathutils "github.com/temirov/gitexec/internal/utils/path"
)

const (
	applicationNameConstant                   = "gitexec"
	applicationShortDescriptionConstant       = "Run a command in every git repository below a directory"
	applicationLongDescriptionConstant        = "gitexec discovers git repositories beneath a location, runs one command inside each of them, and prints the collected output as a single report."
	applicationExampleConstant                = "  gitexec --location ~/src --exec \"git status --short\"\n  gitexec -l . -e \"git rev-parse --abbrev-ref HEAD\" -o json"
	configFileFlagNameConstant                = "config"
	configFileFlagUsageConstant               = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                  = "log-level"
	logLevelFlagUsageConstant                 = "Override the configured log level."
	logFormatFlagNameConstant                 = "log-format"
	logFormatFlagUsageConstant                = "Override the configured log format."
	locationFlagNameConstant                  = "location"
	locationFlagShorthandConstant             = "l"
	locationFlagUsageConstant                 = "The location to scan for repositories (defaults to the home directory)."
	execFlagNameConstant                      = "exec"
	execFlagShorthandConstant                 = "e"
	execFlagUsageConstant                     = "The command to execute in each repository."
	outputFlagNameConstant                    = "output"
	outputFlagShorthandConstant               = "o"
	outputFlagUsageConstant                   = "Report format."
	followSymlinksFlagNameConstant            = "follow-symlinks"
	followSymlinksFlagShorthandConstant       = "f"
	followSymlinksFlagUsageConstant           = "Descend into symbolic links to directories; a link loop aborts the run."
	colorizeFlagNameConstant                  = "colorize"
	colorizeFlagShorthandConstant             = "c"
	colorizeFlagUsageConstant                 = "Highlight repository paths when writing line reports to a terminal."
	commonLogLevelConfigKeyConstant           = "common.log_level"
	commonLogFormatConfigKeyConstant          = "common.log_format"
	execLocationConfigKeyConstant             = "exec.location"
	execCommandConfigKeyConstant              = "exec.command"
	execOutputConfigKeyConstant               = "exec.output"
	execFollowSymlinksConfigKeyConstant       = "exec.follow_symlinks"
	execColorizeConfigKeyConstant             = "exec.colorize"
	execWorkingDirectoryModeConfigKeyConstant = "exec.working_directory_mode"
	defaultLocationConstant                   = "~"
	environmentPrefixConstant                 = "GITEXEC"
	configurationNameConstant                 = "config"
	configurationTypeConstant                 = "yaml"
	workingDirectoryModeExplicitConstant      = "explicit"
	workingDirectoryModeProcessConstant       = "process"
	configurationInitializedMessageConstant   = "configuration initialized"
	runStartingMessageConstant                = "run starting"
	configurationLogLevelFieldConstant        = "log_level"
	configurationLogFormatFieldConstant       = "log_format"
	configurationFileFieldConstant            = "config_file"
	locationFieldConstant                     = "location"
	commandFieldConstant                      = "command"
	outputFieldConstant                       = "output"
	workingDirectoryModeFieldConstant         = "working_directory_mode"
	configurationLoadFailureMessageConstant   = "unable to load configuration"
	loggerCreationFailureMessageConstant      = "unable to create logger"
	flagParsingFailureMessageConstant         = "invalid flags"
	unexpectedArgumentsTemplateConstant       = "unexpected arguments: %s"
	missingCommandMessageConstant             = "a command to execute is required (--exec)"
	invalidOutputMessageConstant              = "invalid output format"
	invalidWorkingDirectoryModeTemplate       = "unsupported working directory mode %q (expected %s or %s)"
	executorAssemblyErrorTemplateConstant     = "unable to assemble executor: %w"
	loggerSyncErrorTemplateConstant           = "unable to flush logger: %w"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Exec   ExecConfiguration              `mapstructure:"exec"`
}

// ApplicationCommonConfiguration stores logging configuration.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ExecConfiguration stores the scan and execution settings of a run.
type ExecConfiguration struct {
	Location             string `mapstructure:"location"`
	Command              string `mapstructure:"command"`
	Output               string `mapstructure:"output"`
	FollowSymlinks       bool   `mapstructure:"follow_symlinks"`
	Colorize             bool   `mapstructure:"colorize"`
	WorkingDirectoryMode string `mapstructure:"working_directory_mode"`
}

type execFlagValues struct {
	location       string
	command        string
	output         string
	followSymlinks bool
	colorize       bool
}

// Application wires the Cobra root command, configuration loader, structured logger, and run pipeline.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	execFlags             execFlagValues
	arguments             []string
	standardOutput        io.Writer
	standardError         io.Writer
	terminalDetector      func(io.Writer) bool
	fileSystem            filesystem.FileSystem
}

// NewApplication assembles a fully wired CLI application instance writing to the process streams.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		utils.DefaultConfigurationSearchPaths(applicationNameConstant),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		logger:              zap.NewNop(),
		standardOutput:      os.Stdout,
		standardError:       os.Stderr,
		terminalDetector:    isTerminalWriter,
		fileSystem:          filesystem.NewOSFileSystem(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Example:       applicationExampleConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(command *cobra.Command, arguments []string) error {
			if len(arguments) > 0 {
				return batch.UsageError{Message: fmt.Sprintf(unexpectedArgumentsTemplateConstant, strings.Join(arguments, " "))}
			}
			return nil
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.SetFlagErrorFunc(func(command *cobra.Command, flagError error) error {
		return batch.UsageError{Message: flagParsingFailureMessageConstant, Cause: flagError}
	})

	persistentFlags := cobraCommand.PersistentFlags()
	persistentFlags.StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	persistentFlags.StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", flagutils.FormatChoiceUsage(string(utils.LogLevelError), utils.LogLevelNames(), logLevelFlagUsageConstant))
	persistentFlags.StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", flagutils.FormatChoiceUsage(string(utils.LogFormatStructured), utils.LogFormatNames(), logFormatFlagUsageConstant))

	localFlags := cobraCommand.Flags()
	localFlags.StringVarP(&application.execFlags.location, locationFlagNameConstant, locationFlagShorthandConstant, defaultLocationConstant, locationFlagUsageConstant)
	localFlags.StringVarP(&application.execFlags.command, execFlagNameConstant, execFlagShorthandConstant, "", execFlagUsageConstant)
	localFlags.StringVarP(&application.execFlags.output, outputFlagNameConstant, outputFlagShorthandConstant, string(report.OutputFormatLine), flagutils.FormatChoiceUsage(string(report.OutputFormatLine), report.OutputFormatNames(), outputFlagUsageConstant))
	flagutils.AddToggleFlag(localFlags, &application.execFlags.followSymlinks, followSymlinksFlagNameConstant, followSymlinksFlagShorthandConstant, false, followSymlinksFlagUsageConstant)
	flagutils.AddToggleFlag(localFlags, &application.execFlags.colorize, colorizeFlagNameConstant, colorizeFlagShorthandConstant, false, colorizeFlagUsageConstant)

	application.rootCommand = cobraCommand

	return application
}

// SetArguments replaces the command-line arguments parsed by Execute. Without it the process arguments are used.
func (application *Application) SetArguments(arguments []string) {
	application.arguments = append([]string{}, arguments...)
}

// SetOutputs redirects the report and the diagnostics. Nil writers keep the current destination.
func (application *Application) SetOutputs(standardOutput io.Writer, standardError io.Writer) {
	if standardOutput != nil {
		application.standardOutput = standardOutput
	}
	if standardError != nil {
		application.standardError = standardError
	}
}

// Execute runs the root command and ensures logger flushing.
func (application *Application) Execute() error {
	arguments := application.arguments
	if arguments == nil {
		arguments = os.Args[1:]
	}

	application.rootCommand.SetOut(application.standardOutput)
	application.rootCommand.SetErr(application.standardError)
	application.rootCommand.SetArgs(flagutils.NormalizeToggleArguments(application.rootCommand.Flags(), arguments))

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and runs it against the process arguments.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:           string(utils.LogLevelError),
		commonLogFormatConfigKeyConstant:          string(utils.LogFormatStructured),
		execLocationConfigKeyConstant:             defaultLocationConstant,
		execCommandConfigKeyConstant:              "",
		execOutputConfigKeyConstant:               string(report.OutputFormatLine),
		execFollowSymlinksConfigKeyConstant:       false,
		execColorizeConfigKeyConstant:             false,
		execWorkingDirectoryModeConfigKeyConstant: workingDirectoryModeExplicitConstant,
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return batch.UsageError{Message: configurationLoadFailureMessageConstant, Cause: loadError}
	}
	application.configurationMetadata = loadedConfiguration

	application.applyFlagOverrides(command)

	logger, loggerCreationError := utils.NewLoggerFactoryWithWriter(application.standardError).CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return batch.UsageError{Message: loggerCreationFailureMessageConstant, Cause: loggerCreationError}
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

// applyFlagOverrides copies explicitly provided flags over configuration values.
func (application *Application) applyFlagOverrides(command *cobra.Command) {
	if command == nil {
		return
	}
	flagSet := command.Flags()

	if flagSet.Changed(logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if flagSet.Changed(logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}
	if flagSet.Changed(locationFlagNameConstant) {
		application.configuration.Exec.Location = application.execFlags.location
	}
	if flagSet.Changed(execFlagNameConstant) {
		application.configuration.Exec.Command = application.execFlags.command
	}
	if flagSet.Changed(outputFlagNameConstant) {
		application.configuration.Exec.Output = application.execFlags.output
	}
	if flagSet.Changed(followSymlinksFlagNameConstant) {
		application.configuration.Exec.FollowSymlinks = application.execFlags.followSymlinks
	}
	if flagSet.Changed(colorizeFlagNameConstant) {
		application.configuration.Exec.Colorize = application.execFlags.colorize
	}
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command) error {
	executionConfiguration := application.configuration.Exec

	if len(strings.TrimSpace(executionConfiguration.Command)) == 0 {
		return batch.UsageError{Message: missingCommandMessageConstant}
	}

	outputFormat, formatError := report.ParseOutputFormat(executionConfiguration.Output)
	if formatError != nil {
		return batch.UsageError{Message: invalidOutputMessageConstant, Cause: formatError}
	}

	commandRunner, runnerError := application.buildCommandRunner(executionConfiguration.WorkingDirectoryMode)
	if runnerError != nil {
		return runnerError
	}

	renderer, rendererError := report.NewRenderer(outputFormat, report.Options{PathStyler: application.pathStyler(executionConfiguration.Colorize)})
	if rendererError != nil {
		return batch.UsageError{Message: invalidOutputMessageConstant, Cause: rendererError}
	}

	executor, executorError := batch.NewExecutor(batch.Dependencies{
		Walker:     discovery.NewRepositoryWalker(application.fileSystem, application.logger),
		Runner:     commandRunner,
		Renderer:   renderer,
		FileSystem: application.fileSystem,
		Logger:     application.logger,
		Output:     application.standardOutput,
		Errors:     application.standardError,
	})
	if executorError != nil {
		return fmt.Errorf(executorAssemblyErrorTemplateConstant, executorError)
	}

	location := pathutils.NewRepositoryPathSanitizer().Sanitize(executionConfiguration.Location)
	application.logger.Debug(
		runStartingMessageConstant,
		zap.String(locationFieldConstant, location),
		zap.String(commandFieldConstant, executionConfiguration.Command),
		zap.String(outputFieldConstant, string(outputFormat)),
		zap.String(workingDirectoryModeFieldConstant, executionConfiguration.WorkingDirectoryMode),
	)

	return executor.Execute(command.Context(), batch.Options{
		Root:           location,
		Command:        executionConfiguration.Command,
		FollowSymlinks: executionConfiguration.FollowSymlinks,
	})
}

// buildCommandRunner selects the working directory strategy and wraps it with lifecycle logging.
func (application *Application) buildCommandRunner(workingDirectoryMode string) (execshell.CommandRunner, error) {
	var directoryRunner execshell.CommandRunner
	switch strings.ToLower(strings.TrimSpace(workingDirectoryMode)) {
	case workingDirectoryModeExplicitConstant, "":
		directoryRunner = execshell.NewExplicitDirectoryRunner(application.fileSystem)
	case workingDirectoryModeProcessConstant:
		directoryRunner = execshell.NewProcessDirectoryRunner(application.fileSystem)
	default:
		return nil, batch.UsageError{Message: fmt.Sprintf(invalidWorkingDirectoryModeTemplate, workingDirectoryMode, workingDirectoryModeExplicitConstant, workingDirectoryModeProcessConstant)}
	}

	shellExecutor, executorError := execshell.NewShellExecutor(application.logger, directoryRunner, application.humanReadableLoggingEnabled())
	if executorError != nil {
		return nil, fmt.Errorf(executorAssemblyErrorTemplateConstant, executorError)
	}
	return shellExecutor, nil
}

// pathStyler returns a highlighting styler when colorization is requested and the report goes to a terminal.
func (application *Application) pathStyler(colorize bool) report.PathStyler {
	if !colorize || application.terminalDetector == nil || !application.terminalDetector(application.standardOutput) {
		return nil
	}
	return report.NewHighlightPathStyler()
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
	case errors.Is(syncError, syscall.EBADF):
		return nil
	default:
		return syncError
	}
}
