/*
Package ports defines the driven ports (interfaces) of the assistant.

These interfaces decouple the dialogue engine from external implementations,
allowing it to work with various storage backends and inventory sources.

# Key Interfaces

  - Inventory: asset availability and configuration lookup.
  - StateStore: persists and loads conversation state.
  - DistributedLocker: serializes turns for the same session across replicas.
  - RequestRecorder: stores completed asset requests.
*/
package ports
