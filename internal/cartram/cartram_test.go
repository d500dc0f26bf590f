package cartram

import "testing"

func TestViewTransitionsZeroBuffer(t *testing.T) {
	var b Buffer
	img := b.TakeForCartImage()
	img[0] = 0xAB
	b.TakeForDirectory()
	if b.Bytes()[0] != 0 {
		t.Fatalf("TakeForDirectory did not clear stale cart-image bytes")
	}
	if b.View() != ViewDirectory {
		t.Fatalf("View() = %v, want ViewDirectory", b.View())
	}
}

func TestDirEntryRoundTrip(t *testing.T) {
	var b Buffer
	b.TakeForDirectory()
	e, err := b.DirEntryAt(3)
	if err != nil {
		t.Fatalf("DirEntryAt: %v", err)
	}
	e.SetIsDir(true)
	e.SetShortName("FOO.CAR")
	e.SetLongName("foo-longer-name.car")
	e.SetFullPath("/GAMES/FOO.CAR")

	e2, err := b.DirEntryAt(3)
	if err != nil {
		t.Fatalf("DirEntryAt second read: %v", err)
	}
	if !e2.IsDir() {
		t.Errorf("IsDir() = false, want true")
	}
	if got := e2.ShortName(); got != "FOO.CAR" {
		t.Errorf("ShortName() = %q", got)
	}
	if got := e2.LongName(); got != "foo-longer-name.car" {
		t.Errorf("LongName() = %q", got)
	}
	if got := e2.FullPath(); got != "/GAMES/FOO.CAR" {
		t.Errorf("FullPath() = %q", got)
	}
}

func TestDirEntryWrongView(t *testing.T) {
	var b Buffer
	b.TakeForCartImage()
	if _, err := b.DirEntryAt(0); err != ErrWrongView {
		t.Fatalf("DirEntryAt under ViewCartImage: err = %v, want ErrWrongView", err)
	}
}
