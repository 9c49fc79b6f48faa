package funcutils

import (
	log "github.com/sirupsen/logrus"
)

// PanicOrLogOnErr does what its name suggests. It exists for deferred cleanup
// calls whose error has nowhere better to go.
func PanicOrLogOnErr(f func() error, panicOnErr bool, msg string) {
	if err := f(); err != nil {
		if panicOnErr {
			log.Panicf("%s: %s", msg, err)
		}
		log.Errorf("%s: %s", msg, err)
	}
}
