//go:build !noespeak

package tts

/*
#cgo LDFLAGS: -lespeak-ng
#include <stdlib.h>
#include <string.h>
#include <espeak-ng/speak_lib.h>

int
espeak_say(const char *text, const char *voice)
{
	if (!text)
	{ return -1; }

	if (espeak_Initialize(AUDIO_OUTPUT_SYNCH_PLAYBACK, 500, NULL, 0) < 0)
	{ return -2; }

	if (voice && *voice && espeak_SetVoiceByName(voice) != EE_OK)
	{ espeak_Terminate(); return -3; }

	espeak_Synth(text, strlen(text) + 1, 0, POS_CHARACTER, 0, espeakCHARS_AUTO, NULL, NULL);
	espeak_Synchronize();
	espeak_Terminate();

	return 0;
}
*/
import "C"

import (
	"context"
	"fmt"
	"sync"
	"unsafe"
)

// espeak-ng keeps global state.
var espeakMu sync.Mutex

type Espeak struct {
	Voice string
}

func NewEspeak(voice string) *Espeak {
	return &Espeak{Voice: voice}
}

// Speak blocks until the text has been played. espeak cannot be interrupted,
// so ctx is only checked before starting.
func (e *Espeak) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	espeakMu.Lock()
	defer espeakMu.Unlock()

	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))
	cvoice := C.CString(e.Voice)
	defer C.free(unsafe.Pointer(cvoice))

	if rc := C.espeak_say(ctext, cvoice); rc != 0 {
		return fmt.Errorf("espeak_say failed: %d", int(rc))
	}
	return nil
}
