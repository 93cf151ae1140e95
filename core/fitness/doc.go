// Package fitness scores appliance schedules. An Evaluator accumulates the
// hourly load of fixed and shiftable tasks, prices it against a time-of-use
// tariff, measures how far shiftable tasks moved from their preferred start
// and adds a penalty when the worst hour exceeds the household capacity.
// The resulting scalar fitness is what the swarm optimizer minimises.
package fitness
