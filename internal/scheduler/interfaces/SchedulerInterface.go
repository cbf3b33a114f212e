package interfaces

type SchedulerInterface interface {
	Init()
	Stop()
	ResetPoints() int
}
