package security

// InjectionPattern names a known class of dangerous shell behavior.
type InjectionPattern int

const (
	PatternRecursiveDelete InjectionPattern = iota
	PatternSystemWrite
	PatternDiskFormat
	PatternForkBomb
	PatternSystemChmod
	PatternSystemChown
	PatternPipedExecution
	PatternReverseShell
	PatternEncodedExecution
	PatternHistoryManipulation
	PatternPasswordFileAccess
	PatternSSHKeyTheft
	PatternCronManipulation
)

func (p InjectionPattern) String() string {
	switch p {
	case PatternRecursiveDelete:
		return "recursive file deletion"
	case PatternSystemWrite:
		return "writing to system directories"
	case PatternDiskFormat:
		return "disk formatting command"
	case PatternForkBomb:
		return "fork bomb attack"
	case PatternSystemChmod:
		return "changing system file permissions"
	case PatternSystemChown:
		return "changing system file ownership"
	case PatternPipedExecution:
		return "remote code piped to shell"
	case PatternReverseShell:
		return "reverse shell pattern"
	case PatternEncodedExecution:
		return "encoded command execution"
	case PatternHistoryManipulation:
		return "shell history manipulation"
	case PatternPasswordFileAccess:
		return "password file access"
	case PatternSSHKeyTheft:
		return "ssh key access"
	case PatternCronManipulation:
		return "cron job manipulation"
	default:
		return "unknown pattern"
	}
}

// Severity returns the risk level associated with pattern.
func (p InjectionPattern) Severity() Severity {
	switch p {
	case PatternRecursiveDelete, PatternSystemWrite, PatternDiskFormat, PatternForkBomb, PatternReverseShell:
		return SeverityCritical
	case PatternSystemChmod, PatternSystemChown, PatternPipedExecution, PatternEncodedExecution,
		PatternPasswordFileAccess, PatternSSHKeyTheft, PatternCronManipulation:
		return SeverityHigh
	case PatternHistoryManipulation:
		return SeverityMedium
	default:
		return SeverityMedium
	}
}

// dangerousPatterns is checked, in order, against a normalized (and
// separately a raw-lowercased) copy of the command.
var dangerousPatterns = []struct {
	text    string
	pattern InjectionPattern
}{
	{"rm -rf /", PatternRecursiveDelete},
	{"rm -rf /*", PatternRecursiveDelete},
	{"rm -r /", PatternRecursiveDelete},
	{"rm -fr /", PatternRecursiveDelete},
	{"sudo rm -rf", PatternRecursiveDelete},
	{"> /dev/sda", PatternSystemWrite},
	{"> /dev/hda", PatternSystemWrite},
	{"> /dev/nvme", PatternSystemWrite},
	{"dd if=", PatternDiskFormat},
	{"mkfs", PatternDiskFormat},
	{"fdisk", PatternDiskFormat},
	{"parted", PatternDiskFormat},
	{":(){:|:&};:", PatternForkBomb},
	{":(){ :|:& };:", PatternForkBomb},
	{"chmod -r 777 /", PatternSystemChmod},
	{"chmod 777 /", PatternSystemChmod},
	{"chown -r", PatternSystemChown},
	{"nc -e", PatternReverseShell},
	{"ncat -e", PatternReverseShell},
	{"/dev/tcp/", PatternReverseShell},
	{"/dev/udp/", PatternReverseShell},
	{"bash -i >& /dev/tcp", PatternReverseShell},
	{"base64 -d", PatternEncodedExecution},
	{"base64 --decode", PatternEncodedExecution},
	{"histfile=/dev/null", PatternHistoryManipulation},
	{"unset histfile", PatternHistoryManipulation},
	{"history -c", PatternHistoryManipulation},
	{"/etc/passwd", PatternPasswordFileAccess},
	{"/etc/shadow", PatternPasswordFileAccess},
	{"~/.ssh/", PatternSSHKeyTheft},
	{".ssh/id_rsa", PatternSSHKeyTheft},
	{".ssh/id_ed25519", PatternSSHKeyTheft},
	{"crontab -r", PatternCronManipulation},
	{"/etc/cron", PatternCronManipulation},
}

// dangerousChars enable shell injection when left unescaped.
var dangerousChars = map[rune]bool{
	'`':  true,
	'$':  true,
	0:    true,
}

// protectedPaths should never be reachable via path traversal.
var protectedPaths = []string{
	"/", "/etc", "/usr", "/bin", "/sbin", "/boot", "/dev", "/proc", "/sys", "/var", "/root",
}

var pipeToShellTokens = []string{
	"| sh", "|sh", "| bash", "|bash", "| zsh", "|zsh",
	"| python", "|python", "| perl", "|perl", "| ruby", "|ruby",
}

var sudoEscalationPatterns = []string{
	"sudo su", "sudo -i", "sudo bash", "sudo sh", "sudo chmod", "sudo chown", "sudo rm", "sudo dd",
}
