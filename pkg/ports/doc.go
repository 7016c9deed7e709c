/*
Package ports defines the driven ports (interfaces) for the dfa engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to load specifications from files, memory or Redis and to coordinate
reloads across replicas.

# Key Interfaces

  - SpecLoader: Responsible for fetching the raw specification to compile.
  - SpecStore: Responsible for publishing a specification to a shared backend.
  - Watchable: Signals that the specification changed and a reload is due.
  - DistributedLocker: Serializes reloads across instances.
*/
package ports
