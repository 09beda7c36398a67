package search

// Scenarios is the built-in list run by ":tests" and the scenarios command.
// It mixes well-formed requests with typos and ambiguous numbers.
var Scenarios = []string{
	"Sedan flex até 80.000 de 2018 pra cima",
	"SUV a diesel entre 2016 e 2019 em SP",
	"Toyota até 120000",
	"quero HVR",
	"tcross até 50 mil 2022",
	"Picape elétrica 2015",
}
