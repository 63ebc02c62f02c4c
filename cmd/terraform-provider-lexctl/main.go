package main

import (
	"context"
	"flag"
	"log"

	"github.com/hashicorp/terraform-plugin-framework/providerserver"

	"github.com/dimbot/lexctl/internal/provider"
	"github.com/dimbot/lexctl/internal/version"
)

func main() {
	var debug bool
	flag.BoolVar(&debug, "debug", false, "set to true to run the provider with support for debuggers like delve")
	flag.Parse()

	err := providerserver.Serve(context.Background(), provider.New(version.BuildVersion()), providerserver.ServeOpts{
		Address: "registry.terraform.io/dimbot/lexctl",
		Debug:   debug,
	})
	if err != nil {
		log.Fatal(err.Error())
	}
}
