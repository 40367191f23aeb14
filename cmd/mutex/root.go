package mutex

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/VictoriaMetrics/metrics"
	"github.com/spf13/cobra"

	"github.com/ValentinKolb/nsmutex/cmd/util"
	"github.com/ValentinKolb/nsmutex/lib/broker"
	"github.com/ValentinKolb/nsmutex/lib/derive"
	"github.com/ValentinKolb/nsmutex/lib/namespace"
)

var (
	nsCtx           *namespace.Context
	mutexBroker     broker.IMutexBroker
	useInstallation bool

	// MutexCommands represents the mutex command group
	MutexCommands = &cobra.Command{
		Use:               "mutex",
		Short:             "Acquire and inspect cross-process mutexes",
		PersistentPreRunE: setupBroker,
	}

	// runCmd represents the run command
	runCmd = &cobra.Command{
		Use:   "run [pool] -- command [args...]",
		Short: "Run a command while holding a pool mutex",
		Long: util.WrapString("Acquire the cross-process mutex for the given pool name, " +
			"run the command while holding it, and release it when the command exits. " +
			"The command's exit code is propagated. With --installation the single " +
			"installation-wide mutex is held instead and no pool name is expected."),
		Args: cobra.MinimumNArgs(1),
		RunE: runRun,
	}

	// deriveCmd represents the derive command
	deriveCmd = &cobra.Command{
		Use:   "derive [pool]",
		Short: "Print the lock identity derived from a pool name",
		Long: util.WrapString("Print the stable, namespace-qualified lock-object name " +
			"the given pool name hashes to. Useful for inspecting which kernel object " +
			"two processes will contend on."),
		Args: cobra.ExactArgs(1),
		RunE: runDerive,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add subcommands to mutex command
	MutexCommands.AddCommand(runCmd)
	MutexCommands.AddCommand(deriveCmd)

	// Add common broker flags to the mutex command
	util.SetupBrokerFlags(MutexCommands)

	// Add flags specific to run
	runCmd.Flags().BoolVar(&useInstallation, "installation", false,
		util.WrapString("Hold the installation-wide mutex instead of a pool mutex"))
}

// setupBroker initializes the namespace context and the broker
func setupBroker(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	logger := util.GetLogger()
	nsCtx = namespace.NewContext(util.GetNamespaceConfig(logger))
	mutexBroker = broker.NewMutexBroker(nsCtx, logger)
	return nil
}

// runRun handles the run command
func runRun(cmd *cobra.Command, args []string) error {
	var (
		lock    *namespace.Lock
		err     error
		command []string
	)

	if useInstallation {
		command = args
		lock, err = mutexBroker.AcquireInstallation()
	} else {
		if len(args) < 2 {
			return fmt.Errorf("usage: mutex run [pool] -- command [args...]")
		}
		command = args[1:]
		lock, err = mutexBroker.AcquirePool(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to acquire mutex: %v", err)
	}

	c := exec.Command(command[0], command[1:]...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	runErr := c.Run()

	// Release before the exit-code handling below: os.Exit skips defers.
	mutexBroker.Release(lock)
	nsCtx.Teardown()

	if util.MetricsEnabled() {
		metrics.WritePrometheus(os.Stdout, false)
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		return fmt.Errorf("failed to run command: %v", runErr)
	}
	return nil
}

// runDerive handles the derive command
func runDerive(_ *cobra.Command, args []string) error {
	if err := nsCtx.EnsureInitialized(); err != nil {
		return fmt.Errorf("failed to initialize namespace: %v", err)
	}
	defer nsCtx.Teardown()

	h, err := nsCtx.Hasher()
	if err != nil {
		return err
	}
	name, err := derive.MutexName(h, derive.PoolMutexLabel, args[0])
	if err != nil {
		return fmt.Errorf("failed to derive mutex name: %v", err)
	}

	fmt.Println(name)
	return nil
}
