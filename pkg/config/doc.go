// Package config provides configuration management for freelist.
//
// # Key Features
//
// - SimConfig: single configuration structure for a simulation run
// - Structured sections: Pool, Simulation, Logging, Observability
// - Environment variable substitution with ${VAR_NAME} syntax
// - Defaults via NewSimConfig and validation via Validate
//
// # Usage
//
//	cfg := config.NewSimConfig()
//	if err := config.Load("freelist.yaml", cfg); err != nil {
//		log.Fatal(err)
//	}
//
// Fields missing from the file keep their defaults because Load decodes into
// the already populated structure.
//
// # Environment Variable Substitution
//
//	# freelist.yaml
//	pool:
//	  name: ${POOL_NAME}
//	  prewarm: 64
//	  mode: runtime
//	simulation:
//	  ticks: 600
//	  seed: ${SIM_SEED}
package config
