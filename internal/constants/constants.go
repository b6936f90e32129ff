// Package constants defines application-wide constants and version information.
package constants

import "runtime"

// Version holds the application version information
const Version = "1.0"

// Platform is appended to the version in CLI output
const Platform = runtime.GOOS + "/" + runtime.GOARCH

// Generator identity written to every UDDF document
const (
	GeneratorName         = "dc2uddf"
	GeneratorType         = "converter"
	GeneratorManufacturer = "dc2uddf"
	GeneratorEmail        = ""
)

// UDDF dialect produced by the serializer
const (
	UDDFVersion   = "3.2.0"
	UDDFNamespace = "http://www.streit.cc/uddf/3.2/"
)
