package main

import "github.com/livitki/spark-vllm-docker/cmd/vllm-cluster/cmd"

func main() {
	cmd.Execute()
}
