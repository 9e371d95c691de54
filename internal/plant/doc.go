// Package plant implements the reference plant: a continuous linear
// time-invariant model, its zero-order-hold discretization, and the
// discrete-time simulator that advances it one sample at a time.
//
// The package defines:
//
//   - [Params]: natural frequency and damping ratio of a second-order plant
//   - [StateSpace]: continuous (A, B, C, D) realization
//   - [Model]: a validated descriptor plus its sample interval
//   - [Discrete]: the (Ad, Bd, Cd, Dd) quadruple produced by [Discretize]
//   - [Simulator]: owns a [State] and advances it with [Simulator.Step]
//
// # Example
//
//	m, _ := plant.NewSecondOrder(10, 0.7, 0.001)
//	d, _ := m.Discretize()
//	sim := plant.NewSimulator()
//	_ = sim.Initialize(d)
//	y, _ := sim.Step(1.0)
//
// # Output convention
//
// Step computes y = C·x + D·u from the state before the update and only then
// advances x ← A·x + B·u, so a step input first shows up in the output one
// sample later unless D is non-zero.
//
// # Thread Safety
//
// A Simulator is NOT thread-safe and owns its state exclusively. Parallel
// trajectories need independently initialized Simulators.
package plant
