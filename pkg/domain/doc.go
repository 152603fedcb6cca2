// Package domain contains the core value types shared between the podium
// controller, its adapters, and host frontends: command definitions, the
// rendered hierarchy forest, trigger provenance, and presentation updates.
//
// Types in this package are plain data. They carry no goroutines, no locks,
// and no references to the execution engine, so hosts can keep them across
// frames and compare them freely.
package domain
