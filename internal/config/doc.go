// Package config provides configuration parsing for cannon projects.
//
// The configuration is stored in cannon.json at the project root. A project
// root is the nearest directory holding cannon.json or foundry.toml; a
// foundry project without cannon.json runs on defaults.
//
// # Configuration File Structure
//
//	{
//	  "paths": {
//	    "artifacts": "out",
//	    "output": "src/generated/routers",
//	    "definitions": "routers.toml"
//	  },
//	  "router": {
//	    "variant": "deterministic",
//	    "deployer": "0x4e59b44847b379578588920ca78fbf26c0b4956c",
//	    "salt": "0x00",
//	    "maxLeafWidth": 9,
//	    "compile": true,
//	    "concurrency": 4
//	  },
//	  "output": {
//	    "s3": {
//	      "bucket": "routers",
//	      "prefix": "generated",
//	      "region": "us-east-1"
//	    }
//	  },
//	  "dev": {
//	    "host": "localhost",
//	    "port": 4545,
//	    "interval": "500ms"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Artifacts:", cfg.ArtifactsPath())
package config
