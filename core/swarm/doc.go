// Package swarm implements a particle swarm optimizer over a box-bounded
// continuous search space. Particles live in an index-addressed slice; each
// iteration moves every particle using its own best position and the swarm's
// best position, evaluates it and updates the bests in index order.
//
// With Workers > 1 an iteration first moves all particles serially, then
// evaluates them concurrently and finally reduces the results serially, so
// the global best is still compared once per particle in a defined order.
package swarm
