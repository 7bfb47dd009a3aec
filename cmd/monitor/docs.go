package main

//go:generate swag init -g cmd/monitor/main.go -o docs

// @title           FX Monitor API
// @version         0.1.0
// @description     Economic calendar sentiment analysis and actual-data reconciliation.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
