package simulation

// Recorder receives the counters the manager maintains.
// monitoring.Metrics implements it.
type Recorder interface {
	SimulationStarted(strategy string)
	SetActiveSimulations(n int)
	AddSimulationTrades(n int)
	BacktestCompleted(strategy string, source string)
}

type noopRecorder struct{}

func (noopRecorder) SimulationStarted(string) {}

func (noopRecorder) SetActiveSimulations(int) {}

func (noopRecorder) AddSimulationTrades(int) {}

func (noopRecorder) BacktestCompleted(string, string) {}
