// Package hcl loads the toolchain configuration file, bndl.hcl.
//
//	log {
//	  level  = "debug"
//	  format = "json"
//	}
//
//	cache {
//	  enabled = true
//	  dir     = ".bndl-cache"
//	}
//
//	compiler {
//	  workers     = 8
//	  passthrough = ["NodeReroute", "NodeFrame"]
//
//	  unit "yd" {
//	    dimension = "length"
//	    factor    = 0.9144
//	  }
//	}
//
//	serve {
//	  addr = ":9090"
//	}
//
//	builder "remote" {
//	  url     = "http://localhost:3000/bndl"
//	  timeout = "5s"
//	}
//
// Every block and attribute is optional; omitted settings keep the value
// they had before loading.
package hcl
