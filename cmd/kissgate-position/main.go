package main

import (
	kissgate "github.com/doismellburning/kissgate/src"
)

func main() {
	kissgate.PositionMain()
}
