package config

import "testing"

func TestInitialize(t *testing.T) {
	SetConfig(nil)
	defer SetConfig(nil)

	path := writeConfig(t, "locale: uk\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil || cfg.Locale != "uk" {
		t.Fatalf("unexpected config %+v", cfg)
	}

	other := writeConfig(t, "locale: ru\n")
	if err := Initialize(other); err != nil {
		t.Fatalf("second initialize: %v", err)
	}
	if GetConfig().Locale != "uk" {
		t.Error("second Initialize replaced the config")
	}
}

func TestInitializeRetriesAfterFailure(t *testing.T) {
	SetConfig(nil)
	defer SetConfig(nil)

	bad := writeConfig(t, "locale: de\n")
	if err := Initialize(bad); err == nil {
		t.Fatal("expected error for unsupported locale")
	}
	if GetConfig() != nil {
		t.Fatal("failed Initialize installed a config")
	}

	good := writeConfig(t, "locale: ru\n")
	if err := Initialize(good); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if GetConfig().Locale != "ru" {
		t.Errorf("locale = %q, want ru", GetConfig().Locale)
	}
}

func TestSetConfig(t *testing.T) {
	defer SetConfig(nil)

	cfg := Defaults()
	SetConfig(cfg)
	if GetConfig() != cfg {
		t.Error("GetConfig did not return the injected config")
	}
}

func TestMustGetConfig(t *testing.T) {
	SetConfig(nil)

	defer func() {
		if recover() == nil {
			t.Error("expected panic before initialization")
		}
	}()
	MustGetConfig()
}
