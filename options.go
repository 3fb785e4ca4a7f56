package localise

// Option mutates a Localiser during construction.
type Option func(*Localiser) error

// New builds a Localiser over the repository provider using the supplied
// options. Missing collaborators get sensible defaults: a fresh tag
// registry, the default command registry, CLDR-backed locale services,
// fallback and caching enabled, and "en" as default language.
func New(provider RepositoryProvider, opts ...Option) (*Localiser, error) {
	if provider == nil {
		return nil, ErrNoProvider
	}

	localiser := &Localiser{
		provider: provider,
		fallback: true,
		caching:  true,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(localiser); err != nil {
			return nil, err
		}
	}

	if localiser.tags == nil {
		localiser.tags = NewTagRegistry()
	}
	if localiser.commands == nil {
		localiser.commands = NewDefaultCommandRegistry()
	}
	if localiser.services == nil {
		localiser.services = NewCLDRServices()
	}
	if localiser.defaultTag == nil {
		tag, err := localiser.tags.Tag("en")
		if err != nil {
			return nil, err
		}
		localiser.defaultTag = tag
	}

	return localiser, nil
}

// WithDefaultLanguage sets the language used by the *WithDefaults
// methods.
func WithDefaultLanguage(locale string) Option {
	return func(l *Localiser) error {
		if l.tags == nil {
			l.tags = NewTagRegistry()
		}
		tag, err := l.tags.Tag(locale)
		if err != nil {
			return err
		}
		l.defaultTag = tag
		return nil
	}
}

// WithFallback sets the default fallback policy.
func WithFallback(fallback bool) Option {
	return func(l *Localiser) error {
		l.fallback = fallback
		return nil
	}
}

// WithCaching sets the default caching policy.
func WithCaching(caching bool) Option {
	return func(l *Localiser) error {
		l.caching = caching
		return nil
	}
}

// WithLocaleServices replaces the locale services used by the pipeline.
func WithLocaleServices(services LocaleServices) Option {
	return func(l *Localiser) error {
		if services == nil {
			return ErrNoLocaleServices
		}
		l.services = services
		return nil
	}
}

// WithTagRegistry shares a tag registry with the localiser. The registry
// must be the one the provider interns its tags through, otherwise tag
// identity breaks.
func WithTagRegistry(registry *TagRegistry) Option {
	return func(l *Localiser) error {
		if registry == nil {
			return ErrNoTagRegistry
		}
		l.tags = registry
		return nil
	}
}

// WithCommandRegistry replaces the command registry patterns resolve
// commands against.
func WithCommandRegistry(commands *CommandRegistry) Option {
	return func(l *Localiser) error {
		l.commands = commands
		return nil
	}
}

// WithCommand registers an extra command on top of the default registry.
func WithCommand(name string, command CommandFunc) Option {
	return func(l *Localiser) error {
		if l.commands == nil {
			l.commands = NewDefaultCommandRegistry()
		}
		return l.commands.Insert(name, command)
	}
}
